package repository

import (
	"testing"
	"time"

	"alphavantage-pipeline/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_CreateIgnoreConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)

	date := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	event := entity.Event{
		Ticker:    "AAPL",
		EventType: entity.EventTypeEarnings,
		EventDate: date,
		Value:     strPtr("1.40"),
	}

	inserted, err := repo.CreateIgnoreConflict(ctx(), &event)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same (ticker, type, date): skipped, value untouched.
	dup := entity.Event{Ticker: "AAPL", EventType: entity.EventTypeEarnings, EventDate: date, Value: strPtr("9.99")}
	inserted, err = repo.CreateIgnoreConflict(ctx(), &dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	// Same date but different type is a distinct event.
	div := entity.Event{Ticker: "AAPL", EventType: entity.EventTypeDividend, EventDate: date, Value: strPtr("0.25")}
	inserted, err = repo.CreateIgnoreConflict(ctx(), &div)
	require.NoError(t, err)
	assert.True(t, inserted)

	var stored []entity.Event
	require.NoError(t, db.Order("event_type").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, "1.40", *stored[1].Value)
}

func TestEventRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []entity.Event{
		{Ticker: "AAPL", EventType: entity.EventTypeEarnings, EventDate: base},
		{Ticker: "AAPL", EventType: entity.EventTypeEarnings, EventDate: base.AddDate(0, 3, 0)},
		{Ticker: "AAPL", EventType: entity.EventTypeDividend, EventDate: base},
		{Ticker: "MSFT", EventType: entity.EventTypeEarnings, EventDate: base},
	}
	for i := range seed {
		_, err := repo.CreateIgnoreConflict(ctx(), &seed[i])
		require.NoError(t, err)
	}

	got, err := repo.List(ctx(), "AAPL", entity.EventTypeEarnings, nil, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	since := base.AddDate(0, 1, 0)
	got, err = repo.List(ctx(), "AAPL", "", &since, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	all, err := repo.List(ctx(), "", "", nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
