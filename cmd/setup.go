package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/raccclo/internal/shared"
	"github.com/urfave/cli/v3"
)

// credentialsTemplate is the six-key document the operator fills in.
const credentialsTemplate = `{
  "client_id": "",
  "secret_token": "",
  "src_username": "",
  "src_password": "",
  "dst_username": "",
  "dst_password": ""
}
`

// Setup scaffolds the TOML config, initializes the archive database, and
// optionally writes a credentials template for the operator to fill in.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.writePlain("✓ Wrote %s\n", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	r.config = config

	if credsPath := cmd.String("credentials-file"); credsPath != "" {
		if _, err := os.Stat(credsPath); err == nil {
			return fmt.Errorf("credentials file already exists at %s: %w", credsPath, os.ErrExist)
		}
		// 0600: the filled-in file will hold passwords.
		if err := os.WriteFile(credsPath, []byte(credentialsTemplate), 0600); err != nil {
			return fmt.Errorf("failed to write credentials template: %w", err)
		}
		r.writePlain("✓ Wrote %s (fill in before running 'raccclo clone')\n", credsPath)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// setupCommand scaffolds configuration and initializes the archive database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config files and initialize the run archive database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "raccclo.toml",
			},
			&cli.StringFlag{
				Name:  "credentials-file",
				Usage: "Also write an empty credentials JSON template at this path",
			},
		},
		Action: r.Setup,
	}
}
