package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/gmusic/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the bundled config template to the requested path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}

	if cmd.Bool("force") {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Wrote %s\n", path)
	return r.writePlainln("Fill in [credentials] email and password, then run 'gmusic auth login'.")
}

// SetupDatabase initializes the query history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if r.config.Database.Path == "" {
		return fmt.Errorf("%w: set [database] path in %s", shared.ErrMissingDatabase, r.configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	_, db, err := r.openHistory()
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}
