package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/gmusic/internal/shared"
	"github.com/desertthunder/gmusic/internal/ui"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs a ClientLogin with the configured credentials.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := r.client.Credentials()
	if !creds.Configured() {
		return fmt.Errorf("%w: email and password are required", shared.ErrNotConfigured)
	}

	r.logger.Info("logging in", "email", creds.Email)

	token, err := r.client.TokenSource(ctx).Token()
	if err != nil {
		return err
	}

	r.writePlain("%s\n", ui.Styles.OK("✓ Authentication successful"))
	r.writePlain("Account: %s\n", creds.Email)
	return r.writePlain("Session: %s\n", maskToken(token.AccessToken))
}

// AuthStatus reports the configured account and endpoints, optionally verifying them with a login.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	creds := r.client.Credentials()

	r.writePlain("%s\n", ui.Styles.Title(r.client.Name()))
	r.writePlain("Search endpoint: %s\n", r.config.API.BaseURL)
	r.writePlain("Login endpoint:  %s\n", r.config.API.LoginURL)

	if !creds.Configured() {
		r.writePlain("Account: %s\n", ui.Styles.Warn("✗ Not configured"))
		return r.writePlainln("%s", ui.Styles.Help("Set credentials.email and credentials.password or GMUSIC_EMAIL / GMUSIC_PASSWORD."))
	}

	r.writePlain("Account: %s\n", creds.Email)

	if !cmd.Bool("check") {
		return nil
	}

	if err := r.client.Login(ctx); err != nil {
		r.writePlain("Login: %s\n", ui.Styles.Err("✗ Failed"))
		return err
	}
	return r.writePlain("Login: %s\n", ui.Styles.OK("✓ Authenticated"))
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
