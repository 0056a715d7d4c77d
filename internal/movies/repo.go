package movies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"moviefinder/pkg/models"
)

const dateLayout = "2006-01-02"

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q      string // keyword search in title
	Limit  int
	Offset int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize returns q with the page size and offset List actually uses:
// a limit outside 1..100 becomes 20 and a negative offset becomes 0.
func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 || q.Limit > maxPageSize {
		q.Limit = defaultPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// ParseReleaseDate parses a YYYY-MM-DD date. Empty or malformed input
// returns nil, meaning "unknown".
func ParseReleaseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// RecordFromSummary normalizes a catalog summary into the stored shape.
func RecordFromSummary(s models.MovieSummary) models.MovieRecord {
	return models.MovieRecord{
		TMDBID:      s.TMDBID,
		Title:       s.Title,
		Overview:    s.Overview,
		ReleaseDate: ParseReleaseDate(s.ReleaseDate),
	}
}

// Upsert inserts the record or overwrites title, overview and release date
// of the row with the same TMDB id.
func (r *Repo) Upsert(ctx context.Context, m models.MovieRecord) error {
	if m.TMDBID <= 0 {
		return fmt.Errorf("upsert: invalid tmdb id %d", m.TMDBID)
	}

	var date any
	if m.ReleaseDate != nil {
		date = m.ReleaseDate.Format(dateLayout)
	}

	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO movies (tmdb_id, title, overview, release_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tmdb_id) DO UPDATE SET
		  title = excluded.title,
		  overview = excluded.overview,
		  release_date = excluded.release_date
	`, m.TMDBID, m.Title, m.Overview, date); err != nil {
		return fmt.Errorf("exec upsert for %d: %w", m.TMDBID, err)
	}
	return nil
}

func (r *Repo) GetByTMDBID(ctx context.Context, id int64) (*models.MovieRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT tmdb_id, title, overview, release_date
		FROM movies
		WHERE tmdb_id = ?
	`, id)

	m, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByTMDBID: %w", err)
	}
	return m, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.MovieRecord, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.MovieRecord, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner) (*models.MovieRecord, error) {
	var (
		m        models.MovieRecord
		overview sql.NullString
		date     sql.NullString
	)
	if err := s.Scan(&m.TMDBID, &m.Title, &overview, &date); err != nil {
		return nil, err
	}
	m.Overview = overview.String
	if date.Valid {
		m.ReleaseDate = ParseReleaseDate(date.String)
	}
	return &m, nil
}

func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	sqlStr := `
		SELECT tmdb_id, title, overview, release_date
		FROM movies
	`
	if countOnly {
		sqlStr = `SELECT COUNT(*) FROM movies`
	}

	var args []any
	if kw := strings.TrimSpace(q.Q); kw != "" {
		sqlStr += " WHERE LOWER(title) LIKE ?"
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}

	if !countOnly {
		sqlStr += " ORDER BY title ASC LIMIT ? OFFSET ?"
		q = q.Normalize()
		args = append(args, q.Limit, q.Offset)
	}
	return sqlStr, args
}
