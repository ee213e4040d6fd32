package cvs

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/client/migrations"
	"github.com/dmitrijs2005/cvgenius/internal/client/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))
	return db
}

func cvAt(id, title string, at time.Time, draft bool) *models.CV {
	return &models.CV{
		ID:           id,
		LastModified: at,
		IsDraft:      draft,
		Document:     map[string]any{"title": title},
	}
}

func TestSQLiteRepository_UpsertAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.Date(2025, 5, 1, 12, 0, 0, 123, time.UTC)

	require.NoError(t, r.Upsert(ctx, cvAt("cv-1", "first", at, true)))

	got, err := r.GetByID(ctx, "cv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Title())
	assert.Equal(t, at, got.LastModified)
	assert.True(t, got.IsDraft)

	require.NoError(t, r.Upsert(ctx, cvAt("cv-1", "second", at.Add(time.Minute), false)))
	got, err = r.GetByID(ctx, "cv-1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title())
	assert.False(t, got.IsDraft)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteRepository_ListAndDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Upsert(ctx, cvAt("old", "old", base, true)))
	require.NoError(t, r.Upsert(ctx, cvAt("new", "new", base.Add(time.Hour), true)))
	require.NoError(t, r.Upsert(ctx, cvAt("done", "done", base.Add(30*time.Minute), false)))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "done", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	drafts, err := r.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "new", drafts[0].ID)
	assert.Equal(t, "old", drafts[1].ID)

	require.NoError(t, r.DeleteByID(ctx, "old"))
	require.NoError(t, r.DeleteByID(ctx, "old"))

	got, err := r.GetByID(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteRepository_ClosedDB(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	ctx := context.Background()
	assert.Error(t, r.Upsert(ctx, cvAt("x", "x", time.Now(), true)))
	_, err := r.GetAll(ctx)
	assert.Error(t, err)
	_, err = r.GetByID(ctx, "x")
	assert.Error(t, err)
	assert.Error(t, r.DeleteByID(ctx, "x"))
}
