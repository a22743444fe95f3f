package main

import (
	"growth_hub/internal/config" // Custom import path (Config)
	"growth_hub/internal/db"     // Custom import path (Database)
	"os"                         // Exit codes

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"github.com/spf13/cobra"     // Command line flags
)

// Main entry point for migration
func main() {
	var promote string // Username to promote to admin after migrating
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table, optionally promoting an admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig() // Load configuration
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			gdb := db.Migrate(cfg.DSN()) // Create or update every table
			if promote == "" {
				return nil
			}
			// Admins are never self-registered, this is how the first one is made
			return db.PromoteAdmin(gdb, promote)
		},
	}
	cmd.Flags().StringVar(&promote, "promote-admin", "", "username to give the admin role")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
