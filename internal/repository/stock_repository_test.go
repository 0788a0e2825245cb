package repository

import (
	"testing"
	"time"

	"alphavantage-pipeline/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockRepository_CreateAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStockRepository(db)

	stock := entity.Stock{
		Ticker:      "AAPL",
		Name:        "Apple Inc.",
		Sector:      strPtr("Technology"),
		MarketCap:   floatPtr(3.1e12),
		LastUpdated: time.Now(),
	}
	require.NoError(t, repo.Create(ctx(), &stock))

	exists, err := repo.Exists(ctx(), "AAPL")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx(), "MSFT")
	require.NoError(t, err)
	assert.False(t, exists)

	// Update rewrites mutable fields in place; ticker count stays one.
	updated := stock
	updated.Sector = strPtr("Consumer Electronics")
	updated.MarketCap = nil
	require.NoError(t, repo.Update(ctx(), &updated))

	got, err := repo.FindByTicker(ctx(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Sector)
	assert.Equal(t, "Consumer Electronics", *got.Sector)
	assert.Nil(t, got.MarketCap)

	var count int64
	db.Model(&entity.Stock{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStockRepository_FindByTicker_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStockRepository(db)

	got, err := repo.FindByTicker(ctx(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStockRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStockRepository(db)

	for _, ticker := range []string{"MSFT", "AAPL", "GOOG"} {
		require.NoError(t, repo.Create(ctx(), &entity.Stock{Ticker: ticker, Name: ticker, LastUpdated: time.Now()}))
	}

	got, err := repo.List(ctx(), 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "AAPL", got[0].Ticker)

	limited, err := repo.List(ctx(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
