package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/gmusic/internal/shared"
	"golang.org/x/oauth2"
)

var authLine = regexp.MustCompile(`(?m)^Auth=(.*)$`)

// Login performs a ClientLogin exchange with the current credentials and stores the returned token.
//
// Concurrent callers share a single exchange, which runs detached from any one caller's cancellation and is
// bounded by its own timeout. On failure the previous token, if any, is left in place.
func (c *Client) Login(ctx context.Context) error {
	ch := c.logins.DoChan("login", func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loginTimeout)
		defer cancel()
		return nil, c.login(lctx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) login(ctx context.Context) error {
	creds := c.Credentials()
	if !creds.Configured() {
		return fmt.Errorf("%w: email and password are required", shared.ErrNotConfigured)
	}

	form := url.Values{
		"accountType": {"HOSTED_OR_GOOGLE"},
		"Email":       {creds.Email},
		"Passwd":      {creds.Password},
		"service":     {"sj"},
		"source":      {"tomahawk-gmusic-" + Version},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.roundTrip(req)
	if err != nil {
		c.logger.Error("login failed", "err", err)
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("login failed", "status", resp.Status, "body", strings.TrimSpace(string(resp.Body)))
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	token, err := parseAuthToken(resp.Body)
	if err != nil {
		c.logger.Error("login response malformed", "err", err)
		return err
	}

	c.setToken(token)
	c.logger.Debug("logged in", "email", creds.Email)
	return nil
}

// parseAuthToken extracts the value of the "Auth=" line from a ClientLogin response body.
func parseAuthToken(body []byte) (string, error) {
	m := authLine.FindSubmatch(body)
	if m == nil {
		return "", shared.ErrTokenNotFound
	}

	token := strings.TrimRight(string(m[1]), "\r")
	if token == "" {
		return "", shared.ErrTokenNotFound
	}
	return token, nil
}

// TokenSource returns an [oauth2.TokenSource] yielding the current session token, logging in when there is none yet.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &clientLoginSource{ctx: ctx, client: c}
}

type clientLoginSource struct {
	ctx    context.Context
	client *Client
}

func (s *clientLoginSource) Token() (*oauth2.Token, error) {
	if tok := s.client.SessionToken(); tok.Valid() {
		return tok, nil
	}

	if err := s.client.Login(s.ctx); err != nil {
		return nil, err
	}
	return s.client.SessionToken(), nil
}
