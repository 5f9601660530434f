package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/requisition_inbound/artifacts"
	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/middlewares"
	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/mmdatafocus/requisition_inbound/workflow"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const gcsArtifactPrefix = "inbound"

// application holds the process-scoped dependencies shared by every handler.
type application struct {
	db       *gorm.DB
	settings *config.Settings
	writer   *artifacts.Writer
	ingestor *models.Ingestor
	creds    utils.BasicCredentials
	limiter  *middlewares.RateLimiter
}

func newApplication(db *gorm.DB, settings *config.Settings, mirror artifacts.Mirror, rfc models.RFCCaller) *application {
	return &application{
		db:       db,
		settings: settings,
		writer:   artifacts.NewWriter(settings.InboundDir, settings.Location(), mirror),
		ingestor: models.NewIngestor(db, rfc, settings.RFCFunctionModule),
		creds: utils.BasicCredentials{
			Username:     settings.AuthUsername,
			Password:     settings.AuthPassword,
			PasswordHash: settings.AuthPasswordHash,
		},
	}
}

func newRouter(app *application) (*gin.Engine, error) {
	logger := config.GetLogger()

	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.MetricsMiddleware())
	if corsHandler := newCORS(app.settings); corsHandler != nil {
		r.Use(corsHandler)
	}
	r.Use(middlewares.LoaderMiddleware(app.db))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ingest := []gin.HandlerFunc{}
	if app.limiter != nil {
		ingest = append(ingest, app.limiter.RateLimitMiddleware)
	}
	ingest = append(ingest,
		middlewares.BasicAuthMiddleware(app.creds, app.settings.AuthRealm),
		app.ingestHandler(),
	)
	r.POST("/", ingest...)
	r.POST("/api/inbound", ingest...)
	r.GET("/", app.apiInfoHandler)
	r.GET("/api/inbound", app.apiInfoHandler)

	r.GET("/data", app.dataHandler)
	r.GET("/data/export.xlsx", app.exportHandler)

	api := r.Group("/api/headers")
	api.GET("", app.listHeadersHandler)
	api.GET("/:id", app.getHeaderHandler)
	api.GET("/:id/items", app.listItemsHandler)
	api.GET("/:id/approvals", app.listApprovalsHandler)

	r.NoRoute(customNotFoundHandler)
	return r, nil
}

// newCORS applies the allowlist in production and allows every origin elsewhere.
// It returns nil in production when no origin is configured.
func newCORS(settings *config.Settings) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if settings.IsProduction() {
		origins := utils.SplitAndTrim(settings.CORSAllowedOrigins)
		if len(origins) == 0 {
			return nil
		}
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationHeader)
	corsConfig.AddExposeHeaders("Content-Length", middlewares.CorrelationHeader)
	corsConfig.AllowCredentials = true
	return cors.New(corsConfig)
}

func customNotFoundHandler(c *gin.Context) {
	middlewares.AbortWithMessage(c, http.StatusNotFound, "Route not found")
}

func main() {
	logger := config.GetLogger()

	settings, err := config.LoadSettings()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "settings"}).Fatal(err.Error())
	}
	config.SetLogLevel(settings.LogLevel)
	middlewares.SetResponseLocation(settings.Location())
	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	db, err := config.ConnectDatabaseWithRetry(sigCtx, settings)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Fatal(err.Error())
	}
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can block tables; deployments may run `inbound-ops migrate` instead.
	if !settings.SkipMigrations {
		if err := models.MigrateTable(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Fatal(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	if err := config.ConnectRedisWithRetry(sigCtx, settings.RedisAddress); err != nil {
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn("continuing without redis: " + err.Error())
	}
	defer config.CloseRedis()

	var mirror artifacts.Mirror
	if utils.NormalizeStorageProvider(settings.StorageProvider) == utils.StorageProviderGCS {
		gcsMirror, err := artifacts.NewGCSMirror(sigCtx, settings.GCSBucket, gcsArtifactPrefix)
		if err != nil {
			logger.WithFields(logrus.Fields{"field": "storage"}).Warn("artifact mirror disabled: " + err.Error())
		} else {
			defer gcsMirror.Close()
			mirror = gcsMirror
		}
	}

	var rfc models.RFCCaller = models.UnavailableRFC{}
	if settings.PubSubTopic != "" {
		publisher, err := workflow.NewRFCPublisher(sigCtx, settings.PubSubTopic, !settings.IsProduction())
		if err != nil {
			logger.WithFields(logrus.Fields{"field": "pubsub"}).Warn("rfc hand-off disabled: " + err.Error())
		} else {
			rfc = publisher
		}
		defer config.ClosePubSub()
	}

	app := newApplication(db, settings, mirror, rfc)
	if settings.RateLimitEnabled {
		if client := config.GetRedisDB(); client != nil {
			app.limiter = middlewares.NewRateLimiter(client, settings.RateLimitMaxRequests, time.Duration(settings.RateLimitWindowSeconds)*time.Second)
		} else {
			logger.WithFields(logrus.Fields{"field": "rateLimit"}).Warn("RATE_LIMIT_ENABLED=true but redis is not connected")
		}
	}

	r, err := newRouter(app)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "templates"}).Fatal(err.Error())
	}

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	logger.WithFields(logrus.Fields{
		"info":        "Server Started",
		"port":        settings.Port,
		"db_driver":   settings.DBDriver,
		"inbound_dir": settings.InboundDir,
	}).Info("listening on http://localhost:" + settings.Port + "/")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":           c.Request.URL.Path,
				"correlation_id": cid,
			}).Error(c.Errors.String())
		}
	}
}
