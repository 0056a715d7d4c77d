package movies

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviefinder/pkg/database"
	"moviefinder/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func date(s string) *time.Time {
	t, _ := time.Parse(dateLayout, s)
	return &t
}

func TestParseReleaseDate(t *testing.T) {
	assert.Equal(t, date("1977-05-25"), ParseReleaseDate("1977-05-25"))
	assert.Equal(t, date("2014-11-05"), ParseReleaseDate(" 2014-11-05 "))
	assert.Nil(t, ParseReleaseDate(""))
	assert.Nil(t, ParseReleaseDate("1977"))
	assert.Nil(t, ParseReleaseDate("25/05/1977"))
	assert.Nil(t, ParseReleaseDate("1977-13-40"))
}

func TestRecordFromSummary(t *testing.T) {
	rec := RecordFromSummary(models.MovieSummary{TMDBID: 11, Title: "Star Wars", Overview: "o", ReleaseDate: "bad"})
	assert.Equal(t, models.MovieRecord{TMDBID: 11, Title: "Star Wars", Overview: "o"}, rec)
}

func TestUpsertIsIdempotentPerTMDBID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, models.MovieRecord{TMDBID: 157336, Title: "Interstellar", Overview: "old", ReleaseDate: date("2014-11-05")}))
	require.NoError(t, repo.Upsert(ctx, models.MovieRecord{TMDBID: 157336, Title: "Interstellar (2014)", Overview: "new"}))

	total, err := repo.Count(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	got, err := repo.GetByTMDBID(ctx, 157336)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Interstellar (2014)", got.Title)
	assert.Equal(t, "new", got.Overview)
	assert.Nil(t, got.ReleaseDate)
}

func TestUpsertStoresDate(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, models.MovieRecord{TMDBID: 11, Title: "Star Wars", ReleaseDate: date("1977-05-25")}))

	got, err := repo.GetByTMDBID(ctx, 11)
	require.NoError(t, err)
	require.NotNil(t, got.ReleaseDate)
	assert.Equal(t, "1977-05-25", got.ReleaseDate.Format(dateLayout))
}

func TestUpsertRejectsMissingID(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	assert.Error(t, repo.Upsert(context.Background(), models.MovieRecord{Title: "ghost"}))
}

func TestGetByTMDBIDMissing(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	got, err := repo.GetByTMDBID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))
	for i, title := range []string{"Alien", "Aliens", "Heat", "Alien 3"} {
		require.NoError(t, repo.Upsert(ctx, models.MovieRecord{TMDBID: int64(i + 1), Title: title}))
	}

	items, err := repo.List(ctx, ListQuery{Q: "ALIEN", Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alien", items[0].Title)
	assert.Equal(t, "Alien 3", items[1].Title)

	total, err := repo.Count(ctx, ListQuery{Q: "alien"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	rest, err := repo.List(ctx, ListQuery{Q: "alien", Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Aliens", rest[0].Title)
}
