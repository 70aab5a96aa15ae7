package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/sj/v1/"
	defaultLoginURL = "https://www.google.com/accounts/ClientLogin"

	// Version is reported to ClientLogin as part of the source parameter.
	Version = "0.1"

	tokenType = "GoogleLogin"

	// loginTimeout bounds a shared login exchange, which outlives the caller that started it.
	loginTimeout = 30 * time.Second
)

// ClientOpts contains configuration options for creating a [Client].
type ClientOpts struct {
	BaseURL     string
	LoginURL    string
	HTTPClient  *http.Client
	Logger      *log.Logger
	Credentials models.Credentials
	// RateLimit caps outbound catalog requests per second. Zero disables throttling.
	RateLimit float64
	// MaxAuthRetries is how many times a request is resent after a 401 and a fresh login.
	// Zero selects the default of one; a negative value disables re-authentication.
	MaxAuthRetries int
}

// Client talks to the Google Play Music catalog and implements [Catalog].
type Client struct {
	baseURL        string
	loginURL       string
	httpClient     *http.Client
	logger         *log.Logger
	limiter        *rate.Limiter
	maxAuthRetries int

	mu    sync.RWMutex
	creds models.Credentials
	token *oauth2.Token

	logins singleflight.Group
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// NewClient creates a catalog client. Empty URLs fall back to the public endpoints.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.LoginURL == "" {
		opts.LoginURL = defaultLoginURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.MaxAuthRetries == 0 {
		opts.MaxAuthRetries = 1
	}
	if opts.MaxAuthRetries < 0 {
		opts.MaxAuthRetries = 0
	}

	c := &Client{
		baseURL:        opts.BaseURL,
		loginURL:       opts.LoginURL,
		httpClient:     opts.HTTPClient,
		logger:         shared.WithLogger(opts.Logger, "service", "gmusic"),
		maxAuthRetries: opts.MaxAuthRetries,
		creds:          opts.Credentials,
	}

	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return c
}

// Name returns the catalog's display name.
func (c *Client) Name() string {
	return "Google Play Music"
}

// SetCredentials replaces the account used by subsequent logins. The current token is kept until the next login.
func (c *Client) SetCredentials(creds models.Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds = creds
}

// Credentials returns the account currently in use.
func (c *Client) Credentials() models.Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// SessionToken returns a copy of the current session token, or nil before the first successful login.
func (c *Client) SessionToken() *oauth2.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return nil
	}
	tok := *c.token
	return &tok
}

func (c *Client) setToken(accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = &oauth2.Token{AccessToken: accessToken, TokenType: tokenType}
}

func (c *Client) authHeader() string {
	var access string
	if tok := c.SessionToken(); tok != nil {
		access = tok.AccessToken
	}
	return tokenType + " auth=" + access
}

// Do sends an authenticated request, re-authenticating and resending on 401 up to the configured budget.
//
// Any response other than a retried 401 is returned to the caller regardless of status.
func (c *Client) Do(ctx context.Context, method, endpoint string) (*Response, error) {
	return c.do(ctx, method, endpoint, c.maxAuthRetries)
}

func (c *Client) do(ctx context.Context, method, endpoint string, retries int) (*Response, error) {
	for {
		auth := c.authHeader()
		resp, err := c.send(ctx, method, endpoint, auth)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusUnauthorized || retries <= 0 {
			return resp, nil
		}
		retries--

		// Another request already replaced the rejected token.
		if c.authHeader() != auth {
			continue
		}

		c.logger.Warn("login expired, re-authenticating")
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}
}

func (c *Client) send(ctx context.Context, method, endpoint, auth string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", auth)

	return c.roundTrip(req)
}

func (c *Client) roundTrip(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
