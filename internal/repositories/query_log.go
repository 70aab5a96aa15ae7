package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/shared"
)

const queryLogColumns = `id, sequence, qid, kind, query, track_count, album_count, artist_count, created_at, updated_at`

// QueryLogRepository implements models.Repository[*models.QueryRecord] for the query history.
type QueryLogRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.QueryRecord] = (*QueryLogRepository)(nil)

// NewQueryLogRepository creates a new QueryLogRepository with the given database connection
func NewQueryLogRepository(db *sql.DB) *QueryLogRepository {
	return &QueryLogRepository{db: db}
}

// Create inserts a new [models.QueryRecord] with generated ID and sequence
func (r *QueryLogRepository) Create(rec *models.QueryRecord) error {
	sequence, err := NextSequence(r.db, "query_log")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	rec.SetID(shared.GenerateID())
	rec.SetSequence(sequence)

	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO query_log (` + queryLogColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		rec.ID(),
		rec.Sequence(),
		rec.QID(),
		string(rec.Kind()),
		rec.Query(),
		rec.TrackCount(),
		rec.AlbumCount(),
		rec.ArtistCount(),
		rec.CreatedAt(),
		rec.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}

	return nil
}

// Get retrieves a query record by ID
func (r *QueryLogRepository) Get(id string) (*models.QueryRecord, error) {
	query := `SELECT ` + queryLogColumns + ` FROM query_log WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByQID retrieves the most recent record for a host query id
func (r *QueryLogRepository) GetByQID(qid string) (*models.QueryRecord, error) {
	query := `SELECT ` + queryLogColumns + ` FROM query_log WHERE qid = ? ORDER BY sequence DESC LIMIT 1`
	return r.scan(r.db.QueryRow(query, qid))
}

// Update rewrites the result counts of an existing record
func (r *QueryLogRepository) Update(rec *models.QueryRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	rec.SetUpdatedAt(now)

	query := `
		UPDATE query_log
		SET track_count = ?, album_count = ?, artist_count = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, rec.TrackCount(), rec.AlbumCount(), rec.ArtistCount(), now, rec.ID())
	if err != nil {
		return fmt.Errorf("failed to update query record: %w", err)
	}

	return expectAffected(result, rec.ID())
}

// Delete removes a query record by ID
func (r *QueryLogRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM query_log WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete query record: %w", err)
	}

	return expectAffected(result, id)
}

// List retrieves records newest first.
//
// Supported criteria: "kind" ([models.QueryKind] or string), "qid" (string), "limit" (int).
func (r *QueryLogRepository) List(criteria map[string]any) ([]*models.QueryRecord, error) {
	query := `SELECT ` + queryLogColumns + ` FROM query_log WHERE 1 = 1`
	args := []any{}

	switch kind := criteria["kind"].(type) {
	case models.QueryKind:
		query += " AND kind = ?"
		args = append(args, string(kind))
	case string:
		if kind != "" {
			query += " AND kind = ?"
			args = append(args, kind)
		}
	}

	if qid, ok := criteria["qid"].(string); ok && qid != "" {
		query += " AND qid = ?"
		args = append(args, qid)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []*models.QueryRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return records, nil
}

// Clear deletes every record and returns how many were removed
func (r *QueryLogRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM query_log`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return result.RowsAffected()
}

// Observer returns a function suitable for resolver.Opts.Observers that records every finished query.
//
// Persistence failures are logged and otherwise ignored.
func (r *QueryLogRepository) Observer(logger *log.Logger) func(*models.QueryRecord, error) {
	return func(rec *models.QueryRecord, _ error) {
		if err := r.Create(rec); err != nil {
			logger.Warn("failed to record query", "qid", rec.QID(), "err", err)
		}
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *QueryLogRepository) scan(row scanner) (*models.QueryRecord, error) {
	var (
		id, qid, kind, query    string
		sequence                int
		tracks, albums, artists int
		createdAt, updatedAt    time.Time
	)

	err := row.Scan(&id, &sequence, &qid, &kind, &query, &tracks, &albums, &artists, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan query record: %w", err)
	}

	return models.RestoreQueryRecord(id, sequence, qid, models.QueryKind(kind), query, tracks, albums, artists, createdAt, updatedAt), nil
}

func expectAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRecordNotFound, id)
	}
	return nil
}
