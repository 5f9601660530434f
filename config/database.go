package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Dialector builds the gorm dialector for the configured driver.
func Dialector(s *Settings) gorm.Dialector {
	if s.DBDriver == DriverPostgres {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			s.DBHost,
			s.DBPort,
			s.DBUser,
			s.DBPassword,
			s.DBName,
			s.Timezone,
		)
		return postgres.Open(dsn)
	}

	network := "tcp"
	address := fmt.Sprintf("%s:%s", s.DBHost, s.DBPort)
	// Cloud SQL: DB_HOST=/cloudsql/<CONNECTION_NAME> connects over the proxy's unix socket.
	if strings.HasPrefix(s.DBHost, "/cloudsql/") {
		network = "unix"
		address = s.DBHost
	}
	dsn := fmt.Sprintf("%s:%s@%s(%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		s.DBUser,
		s.DBPassword,
		network,
		address,
		s.DBName,
	)
	return mysql.Open(dsn)
}

// ConnectDatabaseWithRetry opens the database, retrying with backoff until ctx is done.
func ConnectDatabaseWithRetry(ctx context.Context, s *Settings) (*gorm.DB, error) {
	var attempt int
	for {
		attempt++
		db, err := OpenDatabase(s, Dialector(s))
		if err == nil {
			log.Printf("connected to database (driver=%s attempt=%d)", s.DBDriver, attempt)
			return db, nil
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect database: %w", err)
		case <-time.After(sleep):
		}
	}
}

// OpenDatabase opens a gorm handle on the given dialector with the service's pool and plugins.
func OpenDatabase(s *Settings, dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, initConfig())
	if err != nil {
		return nil, err
	}
	if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
		if s.DBMaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(s.DBMaxOpenConns)
		}
		if s.DBMaxIdleConns >= 0 {
			sqlDB.SetMaxIdleConns(s.DBMaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Minute)
	}
	if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
		log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
	}
	return db, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

func initLog() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:                  false,
			LogLevel:                  logger.Error,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
