package models

import (
	"fmt"
	"time"
)

// ScoreNormalization divides the catalog's raw relevance score.
const ScoreNormalization = 512

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Credentials is the account exchanged for a session token.
type Credentials struct {
	Email    string
	Password string
}

// Configured reports whether both email and password are set.
func (c Credentials) Configured() bool {
	return c.Email != "" && c.Password != ""
}

// TrackResult is a resolved track as delivered to the host.
type TrackResult struct {
	Artist     *string  `json:"artist,omitempty"`
	Album      *string  `json:"album,omitempty"`
	Track      *string  `json:"track,omitempty"`
	Year       *int     `json:"year,omitempty"`
	AlbumPos   *int     `json:"albumpos,omitempty"`
	DiscNumber *int     `json:"discnumber,omitempty"`
	Size       *int64   `json:"size,omitempty"`
	Duration   *float64 `json:"duration,omitempty"` // seconds
	URL        string   `json:"url"`
	Checked    bool     `json:"checked"`
	Score      float64  `json:"score"`
}

// AlbumResult is an album search hit.
type AlbumResult struct {
	Artist *string `json:"artist,omitempty"`
	Album  *string `json:"album,omitempty"`
	Year   *int    `json:"year,omitempty"`
	Score  float64 `json:"score"`
}

// ArtistResult is an artist search hit.
type ArtistResult struct {
	Name  *string `json:"name,omitempty"`
	Score float64 `json:"score"`
}

// Results holds the classified output of one search, in catalog order.
type Results struct {
	Tracks  []TrackResult  `json:"tracks"`
	Albums  []AlbumResult  `json:"albums"`
	Artists []ArtistResult `json:"artists"`
}

// NewResults returns an empty bundle with non-nil lists.
func NewResults() *Results {
	return &Results{
		Tracks:  []TrackResult{},
		Albums:  []AlbumResult{},
		Artists: []ArtistResult{},
	}
}

// Len returns the total number of results across all three lists.
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Tracks) + len(r.Albums) + len(r.Artists)
}

// Deref returns the pointed-to value or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// QueryKind distinguishes free-text searches from resolve lookups.
type QueryKind string

const (
	QuerySearch  QueryKind = "search"
	QueryResolve QueryKind = "resolve"
)

// QueryRecord is a persisted entry in the query history.
type QueryRecord struct {
	id          string
	sequence    int
	qid         string
	kind        QueryKind
	query       string
	trackCount  int
	albumCount  int
	artistCount int
	createdAt   time.Time
	updatedAt   time.Time
}

// NewQueryRecord builds a record for a query and the results it produced. results may be nil.
func NewQueryRecord(qid string, kind QueryKind, query string, results *Results) *QueryRecord {
	now := time.Now()
	rec := &QueryRecord{
		qid:       qid,
		kind:      kind,
		query:     query,
		createdAt: now,
		updatedAt: now,
	}
	rec.SetCounts(results)
	return rec
}

// RestoreQueryRecord rebuilds a record from stored columns.
func RestoreQueryRecord(id string, sequence int, qid string, kind QueryKind, query string, tracks, albums, artists int, createdAt, updatedAt time.Time) *QueryRecord {
	return &QueryRecord{
		id:          id,
		sequence:    sequence,
		qid:         qid,
		kind:        kind,
		query:       query,
		trackCount:  tracks,
		albumCount:  albums,
		artistCount: artists,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (q *QueryRecord) ID() string { return q.id }
func (q *QueryRecord) Sequence() int { return q.sequence }
func (q *QueryRecord) QID() string { return q.qid }
func (q *QueryRecord) Kind() QueryKind { return q.kind }
func (q *QueryRecord) Query() string { return q.query }
func (q *QueryRecord) TrackCount() int { return q.trackCount }
func (q *QueryRecord) AlbumCount() int { return q.albumCount }
func (q *QueryRecord) ArtistCount() int { return q.artistCount }
func (q *QueryRecord) CreatedAt() time.Time { return q.createdAt }
func (q *QueryRecord) UpdatedAt() time.Time { return q.updatedAt }

func (q *QueryRecord) SetID(id string) { q.id = id }
func (q *QueryRecord) SetSequence(seq int) { q.sequence = seq }
func (q *QueryRecord) SetUpdatedAt(t time.Time) { q.updatedAt = t }

// SetCounts records the size of each result list.
func (q *QueryRecord) SetCounts(results *Results) {
	if results == nil {
		q.trackCount, q.albumCount, q.artistCount = 0, 0, 0
		return
	}
	q.trackCount = len(results.Tracks)
	q.albumCount = len(results.Albums)
	q.artistCount = len(results.Artists)
}

// Validate checks required fields.
func (q *QueryRecord) Validate() error {
	if q.id == "" {
		return fmt.Errorf("query record ID is required")
	}
	if q.qid == "" {
		return fmt.Errorf("query ID is required")
	}
	if q.kind != QuerySearch && q.kind != QueryResolve {
		return fmt.Errorf("invalid query kind %q", q.kind)
	}
	return nil
}
