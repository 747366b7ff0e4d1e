package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	models "io.winapps.depttimeline/internal/models/entry"
)

// pgxQuerier is the subset of pgxpool.Pool the store needs
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps entries in the entries table created by db.InitPostgres
type PostgresStore struct {
	db  pgxQuerier
	now func() time.Time
}

func NewPostgresStore(db pgxQuerier) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

const entryColumns = `id, title, description, category, date, year, media_url, media_urls, featured, created_at`

func (s *PostgresStore) GetAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.db.Query(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		var category string
		if err := rows.Scan(
			&e.ID,
			&e.Title,
			&e.Description,
			&category,
			&e.Date,
			&e.Year,
			&e.MediaURL,
			&e.MediaURLs,
			&e.Featured,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Category = models.Category(category)
		e.Normalize()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Add(ctx context.Context, entry models.NewEntry) (models.Entry, error) {
	stored := entry.WithIdentity(uuid.New().String(), s.now())
	if err := stored.Prepare(); err != nil {
		return models.Entry{}, err
	}
	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.Exec(ctx, query,
		stored.ID,
		stored.Title,
		stored.Description,
		string(stored.Category),
		stored.Date,
		stored.Year,
		stored.MediaURL,
		stored.MediaURLs,
		stored.Featured,
		stored.CreatedAt,
	)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}
	return stored, nil
}

// Update rewrites every mutable column; created_at is left as stored
func (s *PostgresStore) Update(ctx context.Context, entry models.Entry) (models.Entry, error) {
	if entry.ID == "" {
		return models.Entry{}, ErrMissingID
	}
	if err := entry.Prepare(); err != nil {
		return models.Entry{}, err
	}
	query := `
		UPDATE entries
		SET title = $2, description = $3, category = $4, date = $5, year = $6,
			media_url = $7, media_urls = $8, featured = $9, updated_at = NOW()
		WHERE id = $1
	`
	_, err := s.db.Exec(ctx, query,
		entry.ID,
		entry.Title,
		entry.Description,
		string(entry.Category),
		entry.Date,
		entry.Year,
		entry.MediaURL,
		entry.MediaURLs,
		entry.Featured,
	)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to update entry %s: %w", entry.ID, err)
	}
	return entry, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return nil
}
