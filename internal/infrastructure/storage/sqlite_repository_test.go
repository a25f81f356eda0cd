package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRanker/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "corpus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRememberAndRecent(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo.now = func() time.Time { return base }
	require.NoError(t, repo.Remember(ctx, []domain.Article{
		{ID: "old", Title: "Old", Description: "d", Content: "c", Source: "Reuters", PublishedAt: base.Add(-time.Hour)},
	}))

	repo.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, repo.Remember(ctx, []domain.Article{
		{ID: "new", Title: "New", URL: "https://example.com/new", Source: "CNBC"},
	}))

	all, err := repo.Recent(ctx, base.Add(-time.Minute), 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "old", all[1].ID)
	assert.True(t, all[1].PublishedAt.Equal(base.Add(-time.Hour)))
	assert.True(t, all[0].PublishedAt.IsZero())
	assert.Equal(t, "https://example.com/new", all[0].URL)

	windowed, err := repo.Recent(ctx, base.Add(time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "new", windowed[0].ID)

	limited, err := repo.Recent(ctx, base.Add(-time.Minute), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestRememberKeepsFirstSeen(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	article := domain.Article{ID: "a", Title: "First"}

	repo.now = func() time.Time { return base }
	require.NoError(t, repo.Remember(ctx, []domain.Article{article}))

	article.Title = "Second"
	repo.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, repo.Remember(ctx, []domain.Article{article}))

	got, err := repo.Recent(ctx, base.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.Recent(ctx, base, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "First", got[0].Title)
}

func TestPrune(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo.now = func() time.Time { return base }
	require.NoError(t, repo.Remember(ctx, []domain.Article{{ID: "a"}, {ID: "b"}}))
	repo.now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, repo.Remember(ctx, []domain.Article{{ID: "c"}}))

	removed, err := repo.Prune(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	left, err := repo.Recent(ctx, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "c", left[0].ID)
}

func TestNilDatabaseIsNoop(t *testing.T) {
	t.Parallel()

	repo := &SQLiteRepository{}
	ctx := context.Background()

	require.NoError(t, repo.Remember(ctx, []domain.Article{{ID: "a"}}))
	got, err := repo.Recent(ctx, time.Time{}, 10)
	require.NoError(t, err)
	assert.Nil(t, got)
	n, err := repo.Prune(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, repo.Close())
}
