// inbound-ops runs maintenance tasks against the inbound database and artifact directory.
// It reads the same environment as the service.
//
// Usage:
//
//	go run ./cmd/inbound-ops migrate
//	go run ./cmd/inbound-ops orphans --delete --older-than 30m
//	go run ./cmd/inbound-ops export --out headers.xlsx
//	go run ./cmd/inbound-ops evict 12 13
//	go run ./cmd/inbound-ops hash-password 's3cret'
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "inbound-ops",
		Short:         "Maintenance commands for the requisition inbound service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(orphansCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(evictCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase loads settings and connects with the service's retry policy.
func openDatabase(ctx context.Context) (*config.Settings, *gorm.DB, func(), error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, nil, err
	}
	config.SetLogLevel(settings.LogLevel)
	db, err := config.ConnectDatabaseWithRetry(ctx, settings)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return settings, db, closeFn, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the headers, items, approvals and audit tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeFn, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			if err := models.MigrateTable(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func evictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evict [header-id...]",
		Short: "Drop cached header detail bundles from redis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				id, err := strconv.Atoi(arg)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid header id %q", arg)
				}
				ids = append(ids, id)
			}
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			if settings.RedisAddress == "" {
				return fmt.Errorf("REDIS_ADDRESS is not set")
			}
			if err := config.ConnectRedisWithRetry(cmd.Context(), settings.RedisAddress); err != nil {
				return err
			}
			defer config.CloseRedis()
			if err := models.EvictHeaderDetail(cmd.Context(), ids...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "evicted %d header(s)\n", len(ids))
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash suitable for AUTH_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("password must not be empty")
			}
			hashed, err := utils.HashPassword(args[0])
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hashed))
			return nil
		},
	}
}
