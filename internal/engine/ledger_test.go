package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/weatherbot/internal/domain"
	"github.com/alejandrodnm/weatherbot/internal/engine"
)

func openPosition(id, slug, label string, cost float64, age time.Duration) domain.Position {
	return domain.Position{
		ID:          id,
		Key:         domain.PositionKey(slug, label),
		MarketSlug:  slug,
		BucketLabel: label,
		Side:        domain.SideBuyYes,
		Cost:        cost,
		CreatedAt:   time.Now().UTC().Add(-age),
	}
}

func TestLedgerRebuild_FiltersClosedAndSimulated(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()

	live := openPosition("a", "slug-a", "38-39°F", 3.0, time.Hour)
	resolved := openPosition("b", "slug-b", "40-41°F", 4.0, time.Hour)
	resolved.Resolved = true
	dry := openPosition("c", "slug-c", "42-43°F", 5.0, time.Hour)
	dry.Simulated = true
	stale := openPosition("d", "slug-d", "44-45°F", 6.0, 72*time.Hour)

	for _, p := range []domain.Position{live, resolved, dry, stale} {
		require.NoError(t, store.Append(ctx, p))
	}

	ledger := engine.NewLedger(store, engine.LedgerConfig{MaxExposure: 50, Lookback: 48 * time.Hour})
	require.NoError(t, ledger.Rebuild(ctx))

	assert.True(t, ledger.Has(live.Key))
	assert.False(t, ledger.Has(resolved.Key))
	assert.False(t, ledger.Has(dry.Key))
	assert.False(t, ledger.Has(stale.Key))
	assert.InDelta(t, 3.0, ledger.CommittedExposure(), 1e-9)
	assert.InDelta(t, 47.0, ledger.RemainingBudget(), 1e-9)
}

func TestLedgerRebuild_DuplicateKeysSumCost(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()

	first := openPosition("a", "slug-a", "38-39°F", 3.0, 2*time.Hour)
	second := openPosition("b", "slug-a", "38-39°F", 2.0, time.Hour)
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	ledger := engine.NewLedger(store, engine.LedgerConfig{MaxExposure: 50})
	require.NoError(t, ledger.Rebuild(ctx))

	assert.True(t, ledger.Has(first.Key))
	assert.InDelta(t, 5.0, ledger.CommittedExposure(), 1e-9)
}

func TestLedgerRebuild_ReadFailureIsFatal(t *testing.T) {
	store := &memStore{readErr: errors.New("disk gone")}

	ledger := engine.NewLedger(store, engine.LedgerConfig{})
	err := ledger.Rebuild(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestLedgerCommit_PersistsAndCounts(t *testing.T) {
	store := &memStore{}
	ledger := engine.NewLedger(store, engine.LedgerConfig{MaxExposure: 50})
	ctx := context.Background()

	p := openPosition("a", "slug-a", "38-39°F", 3.0, 0)
	require.NoError(t, ledger.Commit(ctx, p))

	assert.True(t, ledger.Has(p.Key))
	assert.InDelta(t, 3.0, ledger.CommittedExposure(), 1e-9)
	assert.Len(t, store.positions, 1)
}

func TestLedgerCommit_AppendFailureStillBlocksReentry(t *testing.T) {
	store := &memStore{appendErr: errors.New("disk full")}
	ledger := engine.NewLedger(store, engine.LedgerConfig{MaxExposure: 50})
	ctx := context.Background()

	p := openPosition("a", "slug-a", "38-39°F", 3.0, 0)
	err := ledger.Commit(ctx, p)
	require.Error(t, err)

	// The order went out: the in-process view must remember it even
	// though the log does not.
	assert.True(t, ledger.Has(p.Key))
	assert.InDelta(t, 3.0, ledger.CommittedExposure(), 1e-9)
}

func TestLedgerCommit_SimulatedDoesNotCount(t *testing.T) {
	store := &memStore{}
	ledger := engine.NewLedger(store, engine.LedgerConfig{MaxExposure: 50})
	ctx := context.Background()

	p := openPosition("a", "slug-a", "38-39°F", 3.0, 0)
	p.Simulated = true
	require.NoError(t, ledger.Commit(ctx, p))

	assert.False(t, ledger.Has(p.Key))
	assert.Zero(t, ledger.CommittedExposure())
	assert.Len(t, store.positions, 1)
}

func TestLedgerReconcile_ReleasesExposure(t *testing.T) {
	store := &memStore{}
	ledger := engine.NewLedger(store, engine.LedgerConfig{MaxExposure: 50})
	ctx := context.Background()

	winner := openPosition("a", "slug-a", "38-39°F", 3.0, 0)
	loser := openPosition("b", "slug-b", "40-41°F", 4.0, 0)
	pending := openPosition("c", "slug-c", "42-43°F", 5.0, 0)
	for _, p := range []domain.Position{winner, loser, pending} {
		require.NoError(t, ledger.Commit(ctx, p))
	}

	checker := &stubChecker{resolutions: map[string]domain.Resolution{
		"slug-a": {Resolved: true, WinningLabel: "38-39°F"},
		"slug-b": {Resolved: true, WinningLabel: "36-37°F"},
		"slug-c": {Resolved: false},
	}}

	released := ledger.Reconcile(ctx, checker)
	require.Len(t, released, 2)

	outcomes := map[string]string{}
	for _, p := range released {
		outcomes[p.ID] = p.Outcome
	}
	assert.Equal(t, domain.OutcomeWin, outcomes["a"])
	assert.Equal(t, domain.OutcomeLoss, outcomes["b"])

	// Only the pending position still commits capital.
	assert.InDelta(t, 5.0, ledger.CommittedExposure(), 1e-9)
	assert.InDelta(t, 45.0, ledger.RemainingBudget(), 1e-9)

	// The resolutions were persisted.
	all, err := store.ReadAll(ctx)
	require.NoError(t, err)
	for _, p := range all {
		if p.ID == "a" || p.ID == "b" {
			assert.True(t, p.Resolved, p.ID)
		}
	}
}

func TestLedgerReconcile_Idempotent(t *testing.T) {
	store := &memStore{}
	ledger := engine.NewLedger(store, engine.LedgerConfig{MaxExposure: 50})
	ctx := context.Background()

	require.NoError(t, ledger.Commit(ctx, openPosition("a", "slug-a", "38-39°F", 3.0, 0)))

	checker := &stubChecker{resolutions: map[string]domain.Resolution{
		"slug-a": {Resolved: true, WinningLabel: "38-39°F"},
	}}

	first := ledger.Reconcile(ctx, checker)
	require.Len(t, first, 1)

	second := ledger.Reconcile(ctx, checker)
	assert.Empty(t, second)
	assert.Zero(t, ledger.CommittedExposure())
}

func TestLedgerReconcile_FailedCheckKeepsPositionOpen(t *testing.T) {
	store := &memStore{}
	ledger := engine.NewLedger(store, engine.LedgerConfig{MaxExposure: 50})
	ctx := context.Background()

	p := openPosition("a", "slug-a", "38-39°F", 3.0, 0)
	require.NoError(t, ledger.Commit(ctx, p))

	checker := &stubChecker{err: errors.New("gamma down")}
	released := ledger.Reconcile(ctx, checker)

	assert.Empty(t, released)
	assert.True(t, ledger.Has(p.Key))
	assert.InDelta(t, 3.0, ledger.CommittedExposure(), 1e-9)
}
