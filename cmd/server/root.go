package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shop_service/config"
	"shop_service/pkg/db"
	"shop_service/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shop_service",
	Short: "E-commerce REST backend",
	Long: `shop_service serves the catalog, cart and order API.

Commands:
  serve    - run the HTTP API (and the gRPC health endpoint when GRPC_PORT is set)
  migrate  - apply the database schema
  seed     - load demo users, categories and products`,
	SilenceUsage: true,
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// app holds what every command needs.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *sql.DB
}

func bootstrap(ctx context.Context) (*app, error) {
	bootLog := logger.New(logger.Options{Format: "text"})
	cfg, err := config.LoadConfig(bootLog)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	database, err := db.Connect(ctx, db.Options{
		Driver:          cfg.DBDriver,
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established.")

	return &app{cfg: cfg, log: log, db: database}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Errorf("Error closing database connection: %v", err)
		return
	}
	a.log.Info("Database connection closed.")
}
