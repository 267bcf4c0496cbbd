// Package cmd holds the command line entry points of the archive.
package cmd

import (
	"fmt"

	"discord-archive/config"
	"discord-archive/database"
	"discord-archive/models"

	"github.com/spf13/cobra"
)

var configDir string

func addConfigFlag(c *cobra.Command) {
	c.Flags().StringVarP(&configDir, "config-dir", "c", ".",
		"Directory holding config.yaml and .env")
}

func loadStore() (*models.Config, *database.DB, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, db, nil
}
