package resolver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/services"
	"github.com/desertthunder/gmusic/internal/shared"
	tu "github.com/desertthunder/gmusic/internal/testing"
)

var testCreds = models.Credentials{Email: "user@example.com", Password: "secret"}

type fakeCatalog struct {
	mu        sync.Mutex
	creds     models.Credentials
	logins    int
	loginErr  error
	results   *models.Results
	searchErr error
	queries   []string
	caps      []int
	block     chan struct{}
}

func (f *fakeCatalog) SetCredentials(creds models.Credentials) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = creds
}

func (f *fakeCatalog) Login(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	return f.loginErr
}

func (f *fakeCatalog) Search(ctx context.Context, query string, maxResults int) (*models.Results, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.caps = append(f.caps, maxResults)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.results == nil {
		return models.NewResults(), nil
	}
	return f.results, nil
}

func (f *fakeCatalog) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

// mutableConfig lets tests change the saved configuration between calls.
type mutableConfig struct {
	mu    sync.Mutex
	creds models.Credentials
}

func (m *mutableConfig) UserConfig() models.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

func (m *mutableConfig) set(creds models.Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
}

func newTestResolver(t *testing.T, catalog services.Catalog, config ConfigSource, observers ...Observer) (*Resolver, *tu.RecordingSink, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	sink := tu.NewRecordingSink()

	r, err := New(Opts{
		Host: Host{
			Logger: shared.NewLogger(logs),
			Assets: tu.MapAssets{"config.ui": "PHVpPg==", "play-logo.png": "iVBORw0K"},
			Sink:   sink,
			Config: config,
		},
		Catalog:   catalog,
		Observers: observers,
	})
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}
	t.Cleanup(r.Close)

	return r, sink, logs
}

func strPtr(s string) *string { return &s }

func TestNew(t *testing.T) {
	t.Run("Requires Catalog", func(t *testing.T) {
		_, err := New(Opts{Host: Host{Sink: tu.NewRecordingSink()}})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Requires Sink", func(t *testing.T) {
		_, err := New(Opts{Catalog: &fakeCatalog{}})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Default Settings", func(t *testing.T) {
		r, _, _ := newTestResolver(t, &fakeCatalog{}, nil)
		s := r.Settings()

		if s.Name != "Google Play Music" || s.Weight != 90 || s.Timeout != 8*time.Second {
			t.Errorf("unexpected settings %+v", s)
		}
		if s.Icon != "../images/icon.png" {
			t.Errorf("unexpected icon %s", s.Icon)
		}
	})
}

func TestConfigUI(t *testing.T) {
	t.Run("Loads Assets", func(t *testing.T) {
		r, _, _ := newTestResolver(t, &fakeCatalog{}, nil)

		ui, err := r.ConfigUI()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ui.Widget != "PHVpPg==" {
			t.Errorf("unexpected widget %q", ui.Widget)
		}
		if ui.Images["play-logo.png"] != "iVBORw0K" {
			t.Errorf("unexpected logo %q", ui.Images["play-logo.png"])
		}
		if len(ui.Fields) != 2 || ui.Fields[0].Widget != "email_edit" || ui.Fields[1].Widget != "password_edit" {
			t.Errorf("unexpected fields %+v", ui.Fields)
		}
	})

	t.Run("Missing Asset", func(t *testing.T) {
		r, err := New(Opts{
			Host:    Host{Sink: tu.NewRecordingSink(), Assets: tu.MapAssets{}, Logger: shared.NewLogger(&bytes.Buffer{})},
			Catalog: &fakeCatalog{},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := r.ConfigUI(); err == nil {
			t.Error("expected error for missing config.ui")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("Not Configured Makes No Network Calls", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		client := services.NewClient(services.ClientOpts{
			BaseURL:  srv.BaseURL(),
			LoginURL: srv.LoginURL(),
			Logger:   shared.NewLogger(&bytes.Buffer{}),
		})
		r, sink, logs := newTestResolver(t, client, StaticConfig{Email: "user@example.com"})

		r.Init(context.Background())
		r.Search("q1", "anything")
		r.Resolve("q2", "A", "B", "C")
		r.Wait()

		if !strings.Contains(logs.String(), "not configured") {
			t.Errorf("expected not configured diagnostic, got %q", logs.String())
		}
		if srv.Logins() != 0 || srv.Queries() != 0 {
			t.Errorf("expected no network calls, got %d logins and %d queries", srv.Logins(), srv.Queries())
		}
		if len(sink.Deliveries()) != 0 {
			t.Errorf("expected no deliveries, got %d", len(sink.Deliveries()))
		}
		if r.Configured() {
			t.Error("expected resolver to be unconfigured")
		}
	})

	t.Run("Configured Logs In", func(t *testing.T) {
		catalog := &fakeCatalog{}
		r, _, _ := newTestResolver(t, catalog, StaticConfig(testCreds))

		r.Init(context.Background())

		if catalog.loginCount() != 1 {
			t.Errorf("expected 1 login, got %d", catalog.loginCount())
		}
		if catalog.creds != testCreds {
			t.Errorf("expected credentials to be passed to catalog, got %+v", catalog.creds)
		}
	})

	t.Run("Login Failure Is Logged", func(t *testing.T) {
		catalog := &fakeCatalog{loginErr: shared.ErrAuthFailed}
		r, _, logs := newTestResolver(t, catalog, StaticConfig(testCreds))

		r.Init(context.Background())

		if !strings.Contains(logs.String(), "login failed") {
			t.Errorf("expected login failure to be logged, got %q", logs.String())
		}
		if !r.Configured() {
			t.Error("expected resolver to stay configured after a failed login")
		}
	})

	t.Run("NewConfigSaved", func(t *testing.T) {
		catalog := &fakeCatalog{}
		config := &mutableConfig{creds: testCreds}
		r, _, _ := newTestResolver(t, catalog, config)

		r.Init(context.Background())
		r.NewConfigSaved(context.Background())
		if catalog.loginCount() != 1 {
			t.Errorf("expected unchanged config not to re-login, got %d logins", catalog.loginCount())
		}

		config.set(models.Credentials{Email: "other@example.com", Password: "secret"})
		r.NewConfigSaved(context.Background())
		if catalog.loginCount() != 2 {
			t.Errorf("expected changed config to re-login, got %d logins", catalog.loginCount())
		}
	})
}

func TestSearch(t *testing.T) {
	t.Run("Delivers Three Lists", func(t *testing.T) {
		results := models.NewResults()
		results.Tracks = append(results.Tracks, models.TrackResult{Track: strPtr("Song"), URL: "gmusic:track:T1"})
		results.Albums = append(results.Albums, models.AlbumResult{Album: strPtr("Album")})
		results.Artists = append(results.Artists, models.ArtistResult{Name: strPtr("Artist")})

		catalog := &fakeCatalog{results: results}
		r, sink, _ := newTestResolver(t, catalog, StaticConfig(testCreds))
		r.Init(context.Background())

		r.Search("qid-1", "song")
		r.Wait()

		got := sink.Deliveries()
		if len(got) != 3 {
			t.Fatalf("expected 3 deliveries, got %d", len(got))
		}
		kinds := []string{got[0].Kind, got[1].Kind, got[2].Kind}
		if kinds[0] != "tracks" || kinds[1] != "albums" || kinds[2] != "artists" {
			t.Errorf("unexpected delivery order %v", kinds)
		}
		for _, d := range got {
			if d.QID != "qid-1" {
				t.Errorf("expected qid-1, got %s", d.QID)
			}
		}
		if len(got[0].Tracks) != 1 || got[0].Tracks[0].URL != "gmusic:track:T1" {
			t.Errorf("unexpected tracks %+v", got[0].Tracks)
		}
		if catalog.caps[0] != 0 {
			t.Errorf("expected search to be uncapped, got %d", catalog.caps[0])
		}
	})

	t.Run("Empty Response Delivers Empty Lists", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		client := services.NewClient(services.ClientOpts{
			BaseURL:  srv.BaseURL(),
			LoginURL: srv.LoginURL(),
			Logger:   shared.NewLogger(&bytes.Buffer{}),
		})
		r, sink, _ := newTestResolver(t, client, StaticConfig(testCreds))
		r.Init(context.Background())

		r.Search("qid-empty", "nothing matches")
		r.Wait()

		got := sink.Deliveries()
		if len(got) != 3 {
			t.Fatalf("expected 3 deliveries, got %d", len(got))
		}
		if len(got[0].Tracks)+len(got[1].Albums)+len(got[2].Artists) != 0 {
			t.Error("expected all lists to be empty")
		}
	})

	t.Run("Retried 401 Delivers Once", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		srv.SetQueryResponse(http.StatusOK, `{"entries":[{"type":"1","score":512,"track":{"nid":"T9","title":"Retry","durationMillis":"245000"}}]}`)
		client := services.NewClient(services.ClientOpts{
			BaseURL:  srv.BaseURL(),
			LoginURL: srv.LoginURL(),
			Logger:   shared.NewLogger(&bytes.Buffer{}),
		})
		r, sink, _ := newTestResolver(t, client, StaticConfig(testCreds))
		r.Init(context.Background())
		srv.ExpireToken()

		r.Search("qid-retry", "retry")
		r.Wait()

		got := sink.Deliveries()
		if len(got) != 3 {
			t.Fatalf("expected exactly one delivery per list, got %d", len(got))
		}
		if len(got[0].Tracks) != 1 || got[0].Tracks[0].Score != 1 {
			t.Errorf("expected retried response to be delivered, got %+v", got[0].Tracks)
		}
		if srv.Logins() != 2 || srv.Queries() != 2 {
			t.Errorf("expected 2 logins and 2 queries, got %d and %d", srv.Logins(), srv.Queries())
		}
	})

	t.Run("Failure Delivers Nothing", func(t *testing.T) {
		var (
			mu      sync.Mutex
			records []*models.QueryRecord
			errs    []error
		)
		observer := func(rec *models.QueryRecord, err error) {
			mu.Lock()
			defer mu.Unlock()
			records = append(records, rec)
			errs = append(errs, err)
		}

		catalog := &fakeCatalog{searchErr: shared.ErrUnexpectedStatus}
		r, sink, logs := newTestResolver(t, catalog, StaticConfig(testCreds), observer)
		r.Init(context.Background())

		r.Search("qid-fail", "boom")
		r.Wait()

		if len(sink.Deliveries()) != 0 {
			t.Errorf("expected no deliveries, got %d", len(sink.Deliveries()))
		}
		if !strings.Contains(logs.String(), "qid-fail") {
			t.Errorf("expected failure to be logged with qid, got %q", logs.String())
		}
		if len(records) != 1 || !errors.Is(errs[0], shared.ErrUnexpectedStatus) {
			t.Fatalf("expected observer to see the failure, got %v", errs)
		}
		if records[0].Kind() != models.QuerySearch || records[0].QID() != "qid-fail" {
			t.Errorf("unexpected record %+v", records[0])
		}
	})

	t.Run("Close Cancels In-Flight Queries", func(t *testing.T) {
		catalog := &fakeCatalog{block: make(chan struct{})}
		r, sink, _ := newTestResolver(t, catalog, StaticConfig(testCreds))
		r.Init(context.Background())

		r.Search("qid-slow", "slow")

		done := make(chan struct{})
		go func() {
			r.Close()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Close did not return")
		}
		if len(sink.Deliveries()) != 0 {
			t.Error("expected canceled query to deliver nothing")
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("Builds Phrase Query With Cap", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		srv.SetQueryResponse(http.StatusOK, `{"entries":[
			{"type":"1","score":512,"track":{"nid":"T1","title":"C"}},
			{"type":"3","score":512,"album":{"name":"B"}},
			{"type":"2","score":512,"artist":{"name":"A"}}
		]}`)
		client := services.NewClient(services.ClientOpts{
			BaseURL:  srv.BaseURL(),
			LoginURL: srv.LoginURL(),
			Logger:   shared.NewLogger(&bytes.Buffer{}),
		})
		r, sink, _ := newTestResolver(t, client, StaticConfig(testCreds))
		r.Init(context.Background())

		r.Resolve("qid-r", "A", "B", "C")
		r.Wait()

		params := srv.LastQuery()
		if params.Get("q") != `"A" "B" "C"` {
			t.Errorf("unexpected query %q", params.Get("q"))
		}
		if params.Get("max-results") != "1" {
			t.Errorf("expected max-results=1, got %q", params.Get("max-results"))
		}

		got := sink.Deliveries()
		if len(got) != 1 || got[0].Kind != "tracks" {
			t.Fatalf("expected only the track list, got %+v", got)
		}
		if got[0].QID != "qid-r" || len(got[0].Tracks) != 1 {
			t.Errorf("unexpected delivery %+v", got[0])
		}
	})
}

func TestBuildResolveQuery(t *testing.T) {
	tc := []struct {
		artist, album, title string
		want                 string
	}{
		{"A", "B", "C", `"A" "B" "C"`},
		{"Björk", "Homogenic", "Jóga", `"Björk" "Homogenic" "Jóga"`},
		{"", "", "Title", `"" "" "Title"`},
	}

	for _, tt := range tc {
		if got := BuildResolveQuery(tt.artist, tt.album, tt.title); got != tt.want {
			t.Errorf("BuildResolveQuery() = %s, want %s", got, tt.want)
		}
	}
}
