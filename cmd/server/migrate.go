package main

import (
	"errors"

	"shop_service/pkg/db"

	"github.com/spf13/cobra"
)

var resetSchema bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Create the tables, constraints and indexes when they do not exist.

Examples:
  shop_service migrate           # idempotent, safe to rerun
  shop_service migrate --reset   # drop and recreate every table (not in production)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if resetSchema {
			if a.cfg.IsProduction() {
				return errors.New("refusing to reset the schema when APP_ENV=production")
			}
			a.log.Warnf("Dropping and recreating tables: %v", db.Tables)
			if err := db.Reset(cmd.Context(), a.db); err != nil {
				return err
			}
			a.log.Info("Database schema reset.")
			return nil
		}

		if err := db.Migrate(cmd.Context(), a.db); err != nil {
			return err
		}
		a.log.Info("Database schema is up to date.")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&resetSchema, "reset", false, "Drop all tables before applying the schema")
}
