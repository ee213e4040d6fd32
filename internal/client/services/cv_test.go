package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/client/client"
	"github.com/dmitrijs2005/cvgenius/internal/client/models"
	"github.com/dmitrijs2005/cvgenius/internal/client/repositories/cvs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	ids []string
}

func (f *fakeQueue) AddToSyncQueue(_ context.Context, id string) { f.ids = append(f.ids, id) }

type failingRepo struct {
	cvs.Repository
}

func (failingRepo) Upsert(context.Context, *models.CV) error { return errors.New("disk full") }

func newRepo(t *testing.T) cvs.Repository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "cvs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return cvs.NewSQLiteRepository(db)
}

func TestCVService_SaveThenGet(t *testing.T) {
	q := &fakeQueue{}
	svc := NewCVService(newRepo(t), q)
	ctx := context.Background()

	cv := models.NewCV("Data analyst")
	cv.IsDraft = false
	before := time.Now()

	require.NoError(t, svc.SaveCV(ctx, cv))

	got, err := svc.GetCV(ctx, cv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsDraft)
	assert.False(t, got.LastModified.Before(before.Truncate(time.Microsecond)))
	assert.Equal(t, "Data analyst", got.Title())
	assert.Equal(t, []string{cv.ID}, q.ids)
}

func TestCVService_CRUD(t *testing.T) {
	svc := NewCVService(newRepo(t), nil)
	ctx := context.Background()

	a, b := models.NewCV("a"), models.NewCV("b")
	require.NoError(t, svc.SaveCV(ctx, a))
	require.NoError(t, svc.SaveCV(ctx, b))

	all, err := svc.GetAllCVs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := svc.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Len(t, drafts, 2)

	require.NoError(t, svc.DeleteCV(ctx, a.ID))
	require.NoError(t, svc.DeleteCV(ctx, "never-existed"))

	got, err := svc.GetCV(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCVService_SaveErrors(t *testing.T) {
	q := &fakeQueue{}
	ctx := context.Background()

	assert.ErrorIs(t, NewCVService(newRepo(t), q).SaveCV(ctx, &models.CV{}), ErrMissingID)
	assert.ErrorIs(t, NewCVService(newRepo(t), q).SaveCV(ctx, nil), ErrMissingID)

	err := NewCVService(failingRepo{}, q).SaveCV(ctx, models.NewCV("x"))
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, q.ids, "failed saves are not queued")
}
