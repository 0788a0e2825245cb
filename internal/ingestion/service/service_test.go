package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"alphavantage-pipeline/internal/entity"
	"alphavantage-pipeline/internal/ingestion/alphavantage"
	"alphavantage-pipeline/pkg/logger"
)

type fetchCall struct {
	Function string
	Symbol   string
	Params   map[string]string
}

// fakeFetcher serves canned JSON per function name and records every call.
type fakeFetcher struct {
	responses map[string]string
	errs      map[string]error
	calls     []fetchCall
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, function, symbol string, params map[string]string) (alphavantage.Payload, error) {
	f.calls = append(f.calls, fetchCall{Function: function, Symbol: symbol, Params: params})
	if err, ok := f.errs[function]; ok {
		return alphavantage.Payload{}, err
	}
	body, ok := f.responses[function]
	if !ok {
		return alphavantage.Payload{}, fmt.Errorf("no canned response for %s", function)
	}
	return alphavantage.ParsePayload([]byte(body))
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Stock{},
		&entity.DailyPrice{},
		&entity.IntradayPrice{},
		&entity.News{},
		&entity.Event{},
		&entity.FetchLog{},
	))
	return db
}

func pinNow(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = prev })
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}

func ctx() context.Context {
	return context.Background()
}
