package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "positions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testPosition(id string, created time.Time) domain.Position {
	return domain.Position{
		ID:          id,
		Key:         domain.PositionKey("highest-temperature-in-nyc-on-march-1-2026", "38-39°F"),
		MarketSlug:  "highest-temperature-in-nyc-on-march-1-2026",
		BucketLabel: "38-39°F",
		TokenID:     "tok-1",
		Question:    "Highest temperature in NYC on March 1?",
		City:        "nyc",
		Side:        domain.SideBuyYes,
		Probability: 0.45,
		Price:       0.30,
		Edge:        0.15,
		Shares:      17.85,
		Stake:       5.36,
		Cost:        5.36,
		CreatedAt:   created,
	}
}

func TestAppendAndReadAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	p := testPosition("pos-1", now)
	require.NoError(t, store.Append(ctx, p))

	all, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Key, got.Key)
	assert.Equal(t, domain.SideBuyYes, got.Side)
	assert.InDelta(t, 0.45, got.Probability, 1e-9)
	assert.InDelta(t, 5.36, got.Cost, 1e-9)
	assert.False(t, got.Simulated)
	assert.False(t, got.Resolved)
	assert.Nil(t, got.ResolvedAt)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestReadSince_WindowAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	old := testPosition("pos-old", now.Add(-72*time.Hour))
	mid := testPosition("pos-mid", now.Add(-24*time.Hour))
	recent := testPosition("pos-new", now)
	for _, p := range []domain.Position{recent, old, mid} {
		require.NoError(t, store.Append(ctx, p))
	}

	got, err := store.ReadSince(ctx, now.Add(-48*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Más antiguas primero, y la de hace 72h fuera de la ventana.
	assert.Equal(t, "pos-mid", got[0].ID)
	assert.Equal(t, "pos-new", got[1].ID)
}

func TestMarkResolved(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Append(ctx, testPosition("pos-1", now)))
	require.NoError(t, store.MarkResolved(ctx, "pos-1", domain.OutcomeWin, now))

	all, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Resolved)
	assert.Equal(t, domain.OutcomeWin, all[0].Outcome)
	require.NotNil(t, all[0].ResolvedAt)
	assert.True(t, all[0].ResolvedAt.Equal(now))
}

func TestMarkResolved_UnknownID(t *testing.T) {
	store := newTestStore(t)

	err := store.MarkResolved(context.Background(), "nope", domain.OutcomeLoss, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such position")
}

func TestReopenRecoversLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "positions.db")
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, testPosition("pos-1", now)))
	require.NoError(t, store.Close())

	// Reabrir simula un reinicio del proceso: el ledger se reconstruye
	// de lo que haya en disco.
	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.ReadSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "pos-1", got[0].ID)
}
