package server

import (
	"sync"

	"github.com/desertthunder/gmusic/internal/models"
)

// Event kinds sent to streaming subscribers.
const (
	EventTracks  = "tracks"
	EventAlbums  = "albums"
	EventArtists = "artists"
	EventDone    = "done"
	EventError   = "error"
)

// Event is one delivery, or the end of a query, as seen by a streaming subscriber.
type Event struct {
	QID     string                `json:"qid"`
	Kind    string                `json:"kind"`
	Tracks  []models.TrackResult  `json:"tracks,omitempty"`
	Albums  []models.AlbumResult  `json:"albums,omitempty"`
	Artists []models.ArtistResult `json:"artists,omitempty"`
	Error   string                `json:"error,omitempty"`
}

type pendingQuery struct {
	results *models.Results
	done    chan struct{}
	emit    func(Event)
}

// Collector is a resolver result sink that gathers deliveries per query id.
//
// Deliveries for ids that were never started, or were already finished, are dropped.
type Collector struct {
	mu      sync.Mutex
	pending map[string]*pendingQuery
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{pending: make(map[string]*pendingQuery)}
}

// Begin starts collecting for qid. The returned channel closes when the resolver reports qid finished.
func (c *Collector) Begin(qid string) <-chan struct{} {
	return c.BeginStream(qid, nil)
}

// BeginStream is like [Collector.Begin] but also passes every delivery, then a done event, to emit.
// emit runs on the resolver's goroutine and must not block indefinitely.
func (c *Collector) BeginStream(qid string, emit func(Event)) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &pendingQuery{results: models.NewResults(), done: make(chan struct{}), emit: emit}
	c.pending[qid] = p
	return p.done
}

// Finish stops collecting for qid and returns whatever was delivered.
func (c *Collector) Finish(qid string) *models.Results {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[qid]
	if !ok {
		return models.NewResults()
	}
	delete(c.pending, qid)
	return p.results
}

func (c *Collector) AddTrackResults(qid string, results []models.TrackResult) {
	c.deliver(Event{QID: qid, Kind: EventTracks, Tracks: results}, func(r *models.Results) {
		r.Tracks = append(r.Tracks, results...)
	})
}

func (c *Collector) AddAlbumResults(qid string, results []models.AlbumResult) {
	c.deliver(Event{QID: qid, Kind: EventAlbums, Albums: results}, func(r *models.Results) {
		r.Albums = append(r.Albums, results...)
	})
}

func (c *Collector) AddArtistResults(qid string, results []models.ArtistResult) {
	c.deliver(Event{QID: qid, Kind: EventArtists, Artists: results}, func(r *models.Results) {
		r.Artists = append(r.Artists, results...)
	})
}

// Observe marks the record's query finished. Its signature matches resolver.Observer.
func (c *Collector) Observe(rec *models.QueryRecord, _ error) {
	c.mu.Lock()
	p, ok := c.pending[rec.QID()]
	if ok {
		select {
		case <-p.done:
			ok = false
		default:
			close(p.done)
		}
	}
	c.mu.Unlock()

	if ok && p.emit != nil {
		p.emit(Event{QID: rec.QID(), Kind: EventDone})
	}
}

func (c *Collector) deliver(ev Event, fn func(*models.Results)) {
	c.mu.Lock()
	p, ok := c.pending[ev.QID]
	if ok {
		fn(p.results)
	}
	c.mu.Unlock()

	if ok && p.emit != nil {
		p.emit(ev)
	}
}
