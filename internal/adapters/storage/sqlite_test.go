package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/xtrader/internal/adapters/storage"
	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Journal = (*storage.SQLiteJournal)(nil)

func newJournal(t *testing.T) *storage.SQLiteJournal {
	t.Helper()
	j, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func makeTrade(id string, at time.Time, success bool) domain.TradeRecord {
	rec := domain.TradeRecord{
		ID:        id,
		Action:    "buy",
		UserID:    "alice",
		Symbol:    "R_100",
		Direction: "CALL",
		Stake:     decimal.RequireFromString("2.50"),
		Success:   success,
		At:        at,
	}
	if success {
		rec.ContractID = "c-" + id
	} else {
		rec.Error = "backend.Buy: POST /trade/buy: status 200: rejected by backend"
	}
	return rec
}

func TestSQLiteJournal_RecordAndRecentTrades(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, j.RecordTrade(ctx, makeTrade("t1", base.Add(-2*time.Minute), true)))
	require.NoError(t, j.RecordTrade(ctx, makeTrade("t2", base.Add(-time.Minute), false)))
	require.NoError(t, j.RecordTrade(ctx, makeTrade("t3", base, true)))

	recs, err := j.RecentTrades(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Más recientes primero
	assert.Equal(t, "t3", recs[0].ID)
	assert.Equal(t, "t2", recs[1].ID)
	assert.False(t, recs[1].Success)
	assert.Contains(t, recs[1].Error, "rejected")
	assert.Equal(t, "2.5", recs[0].Stake.String())
	assert.Equal(t, "c-t3", recs[0].ContractID)
	assert.True(t, recs[0].At.Equal(base))
}

func TestSQLiteJournal_RecordTradeAssignsID(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	rec := makeTrade("", time.Time{}, true)
	require.NoError(t, j.RecordTrade(ctx, rec))

	recs, err := j.RecentTrades(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Len(t, recs[0].ID, 36)
	assert.False(t, recs[0].At.IsZero())
}

func TestSQLiteJournal_EmptyHistory(t *testing.T) {
	recs, err := newJournal(t).RecentTrades(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteJournal_SignalSkipsUnchanged(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	sig := domain.Signal{Symbol: "R_100", Prediction: domain.PredictionCall, Confidence: 0.7, FetchedAt: time.Now()}

	require.NoError(t, j.RecordSignal(ctx, sig))
	require.NoError(t, j.RecordSignal(ctx, sig))
	n, err := j.CountSignals(ctx, "R_100")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "la misma señal no se reescribe")

	sig.Prediction = domain.PredictionPut
	require.NoError(t, j.RecordSignal(ctx, sig))
	n, err = j.CountSignals(ctx, "R_100")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Otro símbolo tiene su propia caché
	sig.Symbol = "R_50"
	require.NoError(t, j.RecordSignal(ctx, sig))
	n, err = j.CountSignals(ctx, "R_50")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteJournal_RecordNotification(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	require.NoError(t, j.RecordNotification(ctx, domain.Notification{ID: 1, Message: "Connected", Severity: domain.SeveritySuccess}))
	require.NoError(t, j.RecordNotification(ctx, domain.Notification{ID: 2, Message: "Trade failed", Severity: domain.SeverityError}))

	n, err := j.CountNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteJournal_ClosedDB(t *testing.T) {
	j, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	require.NoError(t, j.Close())

	err = j.RecordTrade(context.Background(), makeTrade("x", time.Now(), true))
	assert.Error(t, err)
}
