// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/gmusic/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// CatalogServer is an httptest stand-in for the ClientLogin and skyjam query endpoints.
//
// Each successful login issues a new token ("token-1", "token-2", ...) which becomes the only token the
// query endpoint accepts. Requests carrying any other token get a 401.
type CatalogServer struct {
	*httptest.Server

	mu          sync.Mutex
	validToken  string
	logins      int
	queries     int
	loginStatus int
	loginBody   string
	queryStatus int
	queryBody   string
	loginForms  []url.Values
	queryParams []url.Values
	authHeaders []string
	loginHook   func()
}

// NewCatalogServer starts a server answering queries with an empty result until configured otherwise.
func NewCatalogServer(t *testing.T) *CatalogServer {
	t.Helper()

	s := &CatalogServer{
		loginStatus: http.StatusOK,
		queryStatus: http.StatusOK,
		queryBody:   `{"kind":"sj#searchresponse"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", s.handleLogin)
	mux.HandleFunc("/sj/v1/query", s.handleQuery)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// BaseURL is the catalog base URL to pass to the client.
func (s *CatalogServer) BaseURL() string { return s.URL + "/sj/v1/" }

// LoginURL is the ClientLogin endpoint to pass to the client.
func (s *CatalogServer) LoginURL() string { return s.URL + "/accounts/ClientLogin" }

// SetLoginResponse overrides the login status and body. An empty body restores the default Auth= response.
func (s *CatalogServer) SetLoginResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginStatus = status
	s.loginBody = body
}

// SetLoginHook registers fn to run at the start of every login request, before the request is recorded.
// A hook that blocks holds that login open without stalling other endpoints.
func (s *CatalogServer) SetLoginHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginHook = fn
}

// SetQueryResponse sets the status and body returned to authorized queries.
func (s *CatalogServer) SetQueryResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryStatus = status
	s.queryBody = body
}

// ExpireToken invalidates the current token so the next query gets a 401.
func (s *CatalogServer) ExpireToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validToken = ""
}

// Logins returns the number of login requests received.
func (s *CatalogServer) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Queries returns the number of query requests received, including rejected ones.
func (s *CatalogServer) Queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

// LastLoginForm returns the form of the most recent login, or nil.
func (s *CatalogServer) LastLoginForm() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.loginForms) == 0 {
		return nil
	}
	return s.loginForms[len(s.loginForms)-1]
}

// LastQuery returns the parameters of the most recent query, or nil.
func (s *CatalogServer) LastQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queryParams) == 0 {
		return nil
	}
	return s.queryParams[len(s.queryParams)-1]
}

// AuthHeaders returns the Authorization header of every query in arrival order.
func (s *CatalogServer) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authHeaders...)
}

func (s *CatalogServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	hook := s.loginHook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logins++
	s.loginForms = append(s.loginForms, r.PostForm)

	if s.loginStatus != http.StatusOK {
		w.WriteHeader(s.loginStatus)
		io.WriteString(w, s.loginBody)
		return
	}

	if s.loginBody != "" {
		io.WriteString(w, s.loginBody)
		return
	}

	s.validToken = fmt.Sprintf("token-%d", s.logins)
	fmt.Fprintf(w, "SID=sid\nLSID=lsid\nAuth=%s\n", s.validToken)
}

func (s *CatalogServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries++
	s.queryParams = append(s.queryParams, r.URL.Query())
	auth := r.Header.Get("Authorization")
	s.authHeaders = append(s.authHeaders, auth)

	if s.validToken == "" || auth != "GoogleLogin auth="+s.validToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.queryStatus)
	io.WriteString(w, s.queryBody)
}

// Delivery is one result list handed to a [RecordingSink].
type Delivery struct {
	QID     string
	Kind    string // "tracks", "albums" or "artists"
	Tracks  []models.TrackResult
	Albums  []models.AlbumResult
	Artists []models.ArtistResult
}

// RecordingSink records result deliveries in order.
type RecordingSink struct {
	mu         sync.Mutex
	deliveries []Delivery
	notify     chan Delivery
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{notify: make(chan Delivery, 64)}
}

func (s *RecordingSink) AddTrackResults(qid string, results []models.TrackResult) {
	s.record(Delivery{QID: qid, Kind: "tracks", Tracks: results})
}

func (s *RecordingSink) AddAlbumResults(qid string, results []models.AlbumResult) {
	s.record(Delivery{QID: qid, Kind: "albums", Albums: results})
}

func (s *RecordingSink) AddArtistResults(qid string, results []models.ArtistResult) {
	s.record(Delivery{QID: qid, Kind: "artists", Artists: results})
}

func (s *RecordingSink) record(d Delivery) {
	s.mu.Lock()
	s.deliveries = append(s.deliveries, d)
	s.mu.Unlock()

	select {
	case s.notify <- d:
	default:
	}
}

// Deliveries returns a snapshot of everything recorded so far.
func (s *RecordingSink) Deliveries() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delivery(nil), s.deliveries...)
}

// MustNext waits for the next delivery or fails the test after timeout.
func (s *RecordingSink) MustNext(t *testing.T, timeout time.Duration) Delivery {
	t.Helper()
	select {
	case d := <-s.notify:
		return d
	case <-time.After(timeout):
		t.Fatalf("no delivery within %v", timeout)
		return Delivery{}
	}
}

// MapAssets serves base64 assets from memory.
type MapAssets map[string]string

func (m MapAssets) ReadBase64(name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", fmt.Errorf("asset %s not found", name)
	}
	return v, nil
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
