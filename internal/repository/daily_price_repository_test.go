package repository

import (
	"testing"
	"time"

	"alphavantage-pipeline/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyPriceRepository_UpsertBatch_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDailyPriceRepository(db)

	date := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := repo.UpsertBatch(ctx(), []entity.DailyPrice{{
		Ticker: "AAPL",
		Date:   date,
		Open:   floatPtr(150.0),
		Close:  floatPtr(151.0),
		Volume: int64Ptr(1000),
	}})
	require.NoError(t, err)

	// Re-inserting the same key with a different close must overwrite,
	// not duplicate.
	_, err = repo.UpsertBatch(ctx(), []entity.DailyPrice{{
		Ticker: "AAPL",
		Date:   date,
		Open:   floatPtr(150.0),
		Close:  floatPtr(155.5),
		Volume: int64Ptr(2000),
	}})
	require.NoError(t, err)

	var count int64
	db.Model(&entity.DailyPrice{}).Count(&count)
	assert.Equal(t, int64(1), count)

	latest, err := repo.Latest(ctx(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.NotNil(t, latest.Close)
	assert.Equal(t, 155.5, *latest.Close)
}

func TestDailyPriceRepository_UpsertBatch_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDailyPriceRepository(db)

	n, err := repo.UpsertBatch(ctx(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDailyPriceRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDailyPriceRepository(db)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var batch []entity.DailyPrice
	for i := 0; i < 5; i++ {
		batch = append(batch, entity.DailyPrice{
			Ticker: "MSFT",
			Date:   base.AddDate(0, 0, i),
			Close:  floatPtr(100 + float64(i)),
		})
	}
	_, err := repo.UpsertBatch(ctx(), batch)
	require.NoError(t, err)

	start := base.AddDate(0, 0, 2)
	got, err := repo.List(ctx(), "MSFT", &start, nil, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	// Newest first.
	assert.Equal(t, base.AddDate(0, 0, 4).Format("2006-01-02"), got[0].Date.Format("2006-01-02"))

	limited, err := repo.List(ctx(), "MSFT", nil, nil, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
