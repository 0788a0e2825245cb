package repository

import (
	"testing"
	"time"

	"alphavantage-pipeline/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsRepository_CreateIgnoreConflict_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNewsRepository(db)

	article := entity.News{
		Headline:       "Apple ships new product",
		URL:            "https://example.com/apple-product",
		Source:         "Example Wire",
		SentimentScore: floatPtr(0.31),
		SentimentLabel: "Somewhat-Bullish",
		PublishedAt:    timePtr(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
	}

	inserted, err := repo.CreateIgnoreConflict(ctx(), &article)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same URL again: skipped, never duplicated or modified.
	dup := article
	dup.ID = 0
	dup.Headline = "Changed headline"
	inserted, err = repo.CreateIgnoreConflict(ctx(), &dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	var stored []entity.News
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "Apple ships new product", stored[0].Headline)
}

func TestNewsRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNewsRepository(db)

	for i, url := range []string{"https://a.example/1", "https://a.example/2", "https://a.example/3"} {
		_, err := repo.CreateIgnoreConflict(ctx(), &entity.News{
			Headline:    "headline",
			URL:         url,
			PublishedAt: timePtr(time.Date(2025, 3, 1+i, 0, 0, 0, 0, time.UTC)),
		})
		require.NoError(t, err)
	}

	since := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	got, err := repo.List(ctx(), &since, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	limited, err := repo.List(ctx(), nil, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "https://a.example/3", limited[0].URL)
}

func TestNewsRepository_DeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNewsRepository(db)

	_, err := repo.CreateIgnoreConflict(ctx(), &entity.News{
		Headline:    "old",
		URL:         "https://a.example/old",
		PublishedAt: timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	_, err = repo.CreateIgnoreConflict(ctx(), &entity.News{
		Headline:    "recent",
		URL:         "https://a.example/recent",
		PublishedAt: timePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	n, err := repo.DeleteOlderThan(ctx(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
