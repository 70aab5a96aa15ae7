package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/resolver"
	"github.com/desertthunder/gmusic/internal/shared"
	"github.com/google/uuid"
)

// Querier is the part of a resolver the bridge drives.
type Querier interface {
	Settings() resolver.Settings
	ConfigUI() (*resolver.ConfigUI, error)
	Configured() bool
	Search(qid, query string)
	Resolve(qid, artist, album, title string)
}

// BridgeOpts configures a [Bridge].
type BridgeOpts struct {
	Resolver  Querier
	Collector *Collector
	Logger    *log.Logger
	// Timeout bounds how long a request waits for the resolver; zero uses the resolver's own timeout plus a second.
	Timeout time.Duration
}

// Bridge serves resolver queries over HTTP.
type Bridge struct {
	resolver  Querier
	collector *Collector
	logger    *log.Logger
	timeout   time.Duration
	newQID    func() string
}

type queryResponse struct {
	QID      string `json:"qid"`
	Query    string `json:"query"`
	TimedOut bool   `json:"timed_out,omitempty"`
	*models.Results
}

type healthResponse struct {
	Status     string `json:"status"`
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var _ Handler = (*Bridge)(nil)

// NewBridge creates a bridge. The resolver must report finished queries to opts.Collector.Observe and
// deliver results to opts.Collector.
func NewBridge(opts BridgeOpts) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = opts.Resolver.Settings().Timeout + time.Second
	}

	return &Bridge{
		resolver:  opts.Resolver,
		collector: opts.Collector,
		logger:    shared.WithLogger(logger, "component", "bridge"),
		timeout:   timeout,
		newQID:    uuid.NewString,
	}
}

// Routes returns the HTTP routes this handler serves.
func (b *Bridge) Routes() []string {
	return []string{"/search", "/resolve", "/config-ui", "/health"}
}

// ServeHTTP dispatches on the request path.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	switch r.URL.Path {
	case "/search":
		b.handleSearch(w, r)
	case "/resolve":
		b.handleResolve(w, r)
	case "/config-ui":
		b.handleConfigUI(w)
	case "/health":
		b.handleHealth(w)
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	}
}

func (b *Bridge) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing q parameter"})
		return
	}

	b.dispatch(w, r, query, func(qid string) {
		b.resolver.Search(qid, query)
	})
}

func (b *Bridge) handleResolve(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	artist, album, title := params.Get("artist"), params.Get("album"), params.Get("title")
	if artist == "" && album == "" && title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "one of artist, album or title is required"})
		return
	}

	query := resolver.BuildResolveQuery(artist, album, title)
	b.dispatch(w, r, query, func(qid string) {
		b.resolver.Resolve(qid, artist, album, title)
	})
}

func (b *Bridge) dispatch(w http.ResponseWriter, r *http.Request, query string, start func(qid string)) {
	if !b.resolver.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: shared.ErrNotConfigured.Error()})
		return
	}

	qid := b.newQID()
	done := b.collector.Begin(qid)
	start(qid)

	resp := queryResponse{QID: qid, Query: query}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		b.logger.Warn("query timed out", "qid", qid)
		resp.TimedOut = true
	case <-r.Context().Done():
		b.collector.Finish(qid)
		return
	}

	resp.Results = b.collector.Finish(qid)
	writeJSON(w, http.StatusOK, resp)
}

func (b *Bridge) handleConfigUI(w http.ResponseWriter) {
	ui, err := b.resolver.ConfigUI()
	if err != nil {
		b.logger.Error("failed to build config ui", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ui)
}

func (b *Bridge) handleHealth(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Name:       b.resolver.Settings().Name,
		Configured: b.resolver.Configured(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
