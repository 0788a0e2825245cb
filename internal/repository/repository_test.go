package repository

import (
	"context"
	"testing"
	"time"

	"alphavantage-pipeline/internal/entity"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(
		&entity.Stock{},
		&entity.DailyPrice{},
		&entity.IntradayPrice{},
		&entity.News{},
		&entity.Event{},
		&entity.FetchLog{},
	)
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int { return &i }
func int64Ptr(i int64) *int64 { return &i }
func timePtr(t time.Time) *time.Time { return &t }

func ctx() context.Context { return context.Background() }
