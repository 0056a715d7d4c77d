package movies

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"moviefinder/pkg/models"
)

var csvHeader = []string{"tmdb_id", "title", "overview", "release_date"}

// ExportCSV writes every stored movie, ordered by title, to w.
func (r *Repo) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}

	n := 0
	q := ListQuery{Limit: 100}
	for {
		page, err := r.List(ctx, q)
		if err != nil {
			return n, err
		}
		for _, m := range page {
			date := ""
			if m.ReleaseDate != nil {
				date = m.ReleaseDate.Format(dateLayout)
			}
			if err := cw.Write([]string{
				strconv.FormatInt(m.TMDBID, 10),
				m.Title,
				m.Overview,
				date,
			}); err != nil {
				return n, err
			}
			n++
		}
		if len(page) < q.Limit {
			break
		}
		q.Offset += q.Limit
	}

	cw.Flush()
	return n, cw.Error()
}

// ImportCSV upserts each row of a CSV produced by ExportCSV. Columns are
// matched by header name; rows without a tmdb_id or title are skipped.
func (r *Repo) ImportCSV(ctx context.Context, in io.Reader) (int, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	n := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}

		rawID := valueAt(header, row, "tmdb_id")
		title := valueAt(header, row, "title")
		if rawID == "" || title == "" {
			continue
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return n, fmt.Errorf("parse tmdb_id %q: %w", rawID, err)
		}

		if err := r.Upsert(ctx, models.MovieRecord{
			TMDBID:      id,
			Title:       title,
			Overview:    valueAt(header, row, "overview"),
			ReleaseDate: ParseReleaseDate(valueAt(header, row, "release_date")),
		}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
