// Package resolver adapts the Google Play Music catalog to a music player's resolver contract.
//
// A host constructs a [Resolver] with a [Host] handle, calls [Resolver.Init] once configuration is
// available, then issues [Resolver.Search] and [Resolver.Resolve] calls. Both return immediately; results
// arrive later on the host's [ResultSink] tagged with the caller's query id. Failures are logged and
// produce no delivery.
package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/services"
	"github.com/desertthunder/gmusic/internal/shared"
)

// Settings describes the resolver to the host.
type Settings struct {
	Name    string        `json:"name"`
	Icon    string        `json:"icon"`
	Weight  int           `json:"weight"`
	Timeout time.Duration `json:"timeout"`
}

// DefaultSettings are the values the resolver advertises unless overridden.
var DefaultSettings = Settings{
	Name:    "Google Play Music",
	Icon:    "../images/icon.png",
	Weight:  90,
	Timeout: 8 * time.Second,
}

// ConfigField binds a configuration value to a widget property in the config UI.
type ConfigField struct {
	Name     string `json:"name"`
	Widget   string `json:"widget"`
	Property string `json:"property"`
}

// ConfigUI is the configuration dialog description handed to the host.
type ConfigUI struct {
	Widget string            `json:"widget"`
	Fields []ConfigField     `json:"fields"`
	Images map[string]string `json:"images"`
}

// Plugin is the capability set a host discovers on a loaded resolver.
type Plugin interface {
	Settings() Settings
	ConfigUI() (*ConfigUI, error)
	Init(ctx context.Context)
	NewConfigSaved(ctx context.Context)
	Search(qid, query string)
	Resolve(qid, artist, album, title string)
}

// Observer is notified once per finished query. rec is never nil; err is set when no results were delivered.
type Observer func(rec *models.QueryRecord, err error)

// Opts contains the dependencies of a [Resolver].
type Opts struct {
	Host      Host
	Catalog   services.Catalog
	Settings  *Settings
	Observers []Observer
}

// Resolver implements [Plugin] on top of a [services.Catalog].
type Resolver struct {
	host      Host
	catalog   services.Catalog
	settings  Settings
	observers []Observer
	logger    *log.Logger

	mu         sync.RWMutex
	creds      models.Credentials
	configured bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ Plugin = (*Resolver)(nil)

// New creates a resolver. The catalog and result sink are required.
func New(opts Opts) (*Resolver, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", shared.ErrInvalidConfig)
	}
	if opts.Host.Sink == nil {
		return nil, fmt.Errorf("%w: result sink is required", shared.ErrInvalidConfig)
	}
	if opts.Host.Logger == nil {
		opts.Host.Logger = shared.NewLogger(nil)
	}

	settings := DefaultSettings
	if opts.Settings != nil {
		settings = *opts.Settings
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		host:      opts.Host,
		catalog:   opts.Catalog,
		settings:  settings,
		observers: opts.Observers,
		logger:    shared.WithLogger(opts.Host.Logger, "resolver", settings.Name),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Settings returns the resolver's advertised settings.
func (r *Resolver) Settings() Settings {
	return r.settings
}

// ConfigUI describes the email/password dialog, with its widget and logo loaded from the host's assets.
func (r *Resolver) ConfigUI() (*ConfigUI, error) {
	if r.host.Assets == nil {
		return nil, fmt.Errorf("%w: no asset reader", shared.ErrInvalidConfig)
	}

	widget, err := r.host.Assets.ReadBase64("config.ui")
	if err != nil {
		return nil, fmt.Errorf("failed to read config.ui: %w", err)
	}

	logo, err := r.host.Assets.ReadBase64("play-logo.png")
	if err != nil {
		return nil, fmt.Errorf("failed to read play-logo.png: %w", err)
	}

	return &ConfigUI{
		Widget: widget,
		Fields: []ConfigField{
			{Name: "email", Widget: "email_edit", Property: "text"},
			{Name: "password", Widget: "password_edit", Property: "text"},
		},
		Images: map[string]string{"play-logo.png": logo},
	}, nil
}

func (r *Resolver) userConfig() models.Credentials {
	if r.host.Config == nil {
		return models.Credentials{}
	}
	return r.host.Config.UserConfig()
}

// Init reads the user configuration and logs in. Without both email and password the resolver stays
// inert: nothing is sent to the catalog and searches are ignored.
func (r *Resolver) Init(ctx context.Context) {
	creds := r.userConfig()

	r.mu.Lock()
	r.creds = creds
	r.configured = creds.Configured()
	r.mu.Unlock()

	r.catalog.SetCredentials(creds)

	if !creds.Configured() {
		r.logger.Warn("GMusic resolver not configured.")
		return
	}

	if err := r.catalog.Login(ctx); err != nil {
		r.logger.Error("login failed", "err", err)
	}
}

// NewConfigSaved re-initializes the session when the saved email or password changed.
func (r *Resolver) NewConfigSaved(ctx context.Context) {
	creds := r.userConfig()

	r.mu.RLock()
	changed := creds != r.creds
	r.mu.RUnlock()

	if changed {
		r.Init(ctx)
	}
}

// Configured reports whether the last Init found both email and password.
func (r *Resolver) Configured() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configured
}

// Search runs query in the background and delivers the track, album and artist lists for qid.
func (r *Resolver) Search(qid, query string) {
	r.run(qid, models.QuerySearch, query, 0, func(results *models.Results) {
		r.host.Sink.AddTrackResults(qid, results.Tracks)
		r.host.Sink.AddAlbumResults(qid, results.Albums)
		r.host.Sink.AddArtistResults(qid, results.Artists)
	})
}

// Resolve looks up a single track by artist, album and title and delivers only the track list for qid.
func (r *Resolver) Resolve(qid, artist, album, title string) {
	query := BuildResolveQuery(artist, album, title)
	r.run(qid, models.QueryResolve, query, 1, func(results *models.Results) {
		r.host.Sink.AddTrackResults(qid, results.Tracks)
	})
}

// BuildResolveQuery quotes each field as a phrase: "artist" "album" "title".
func BuildResolveQuery(artist, album, title string) string {
	return fmt.Sprintf(`"%s" "%s" "%s"`, artist, album, title)
}

func (r *Resolver) run(qid string, kind models.QueryKind, query string, maxResults int, deliver func(*models.Results)) {
	if !r.Configured() {
		r.logger.Debug("ignoring query, resolver not configured", "qid", qid, "kind", kind)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx := r.ctx
		if r.settings.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.settings.Timeout)
			defer cancel()
		}

		results, err := r.catalog.Search(ctx, query, maxResults)
		if err != nil {
			r.logger.Warn("query produced no results", "qid", qid, "kind", kind, "err", err)
			r.notify(models.NewQueryRecord(qid, kind, query, nil), err)
			return
		}

		deliver(results)
		r.notify(models.NewQueryRecord(qid, kind, query, results), nil)
	}()
}

func (r *Resolver) notify(rec *models.QueryRecord, err error) {
	for _, observe := range r.observers {
		observe(rec, err)
	}
}

// Wait blocks until every in-flight query has finished.
func (r *Resolver) Wait() {
	r.wg.Wait()
}

// Close cancels in-flight queries and waits for them to return.
func (r *Resolver) Close() {
	r.cancel()
	r.wg.Wait()
}
