package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
	"github.com/alejandrodnm/weatherbot/internal/ports"
)

// LedgerConfig controls the exposure cap and the active window.
type LedgerConfig struct {
	// MaxExposure is the hard cap on committed capital across all open
	// positions.
	MaxExposure float64

	// Lookback bounds the active window. Positions older than this are
	// assumed settled even if the resolution check never confirmed it;
	// weather markets resolve within a day or two.
	Lookback time.Duration
}

// Ledger is the in-memory view of open positions, derived from the durable
// position log. It answers dedup ("do we already hold this bucket?") and
// exposure ("how much capital is committed?"). The ledger is owned by the
// engine and rebuilt from storage, never trusted incrementally across
// process restarts.
type Ledger struct {
	cfg   LedgerConfig
	store ports.PositionStore

	open map[string]domain.Position // position key -> open position
}

// NewLedger builds an empty ledger. Call Rebuild before first use.
func NewLedger(store ports.PositionStore, cfg LedgerConfig) *Ledger {
	if cfg.MaxExposure <= 0 {
		cfg.MaxExposure = 50.0
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 48 * time.Hour
	}
	return &Ledger{
		cfg:   cfg,
		store: store,
		open:  make(map[string]domain.Position),
	}
}

// Rebuild reconstructs the open set from the position log. Simulated and
// resolved positions never count; anything outside the lookback window is
// treated as settled. A rebuild failure means we do not know our exposure,
// which the caller must treat as fatal.
func (l *Ledger) Rebuild(ctx context.Context) error {
	since := time.Now().Add(-l.cfg.Lookback)
	positions, err := l.store.ReadSince(ctx, since)
	if err != nil {
		return fmt.Errorf("ledger.Rebuild: read position log: %w", err)
	}

	open := make(map[string]domain.Position)
	for _, p := range positions {
		if !p.Open() {
			continue
		}
		if prev, ok := open[p.Key]; ok {
			// Dos entradas abiertas con la misma key no deberían existir,
			// pero si el log las tiene ambas cuentan como exposición.
			slog.Warn("ledger: duplicate open position in log",
				"key", p.Key, "first", prev.ID, "second", p.ID)
			p.Cost += prev.Cost
		}
		open[p.Key] = p
	}

	l.open = open
	slog.Info("ledger: rebuilt",
		"open_positions", len(l.open),
		"committed", fmt.Sprintf("$%.2f", l.CommittedExposure()))
	return nil
}

// Has reports whether an open position exists for the given key.
func (l *Ledger) Has(key string) bool {
	_, ok := l.open[key]
	return ok
}

// CommittedExposure is the sum of costs of all open positions.
func (l *Ledger) CommittedExposure() float64 {
	var total float64
	for _, p := range l.open {
		total += p.Cost
	}
	return total
}

// RemainingBudget is the exposure headroom left under the cap.
func (l *Ledger) RemainingBudget() float64 {
	rem := l.cfg.MaxExposure - l.CommittedExposure()
	if rem < 0 {
		return 0
	}
	return rem
}

// OpenPositions returns a snapshot of the open set.
func (l *Ledger) OpenPositions() []domain.Position {
	out := make([]domain.Position, 0, len(l.open))
	for _, p := range l.open {
		out = append(out, p)
	}
	return out
}

// Commit durably appends a position and adds it to the open set. On append
// failure the in-memory entry is still recorded, so this process will not
// re-enter the bucket, but the caller must surface the error loudly: a
// restart would rebuild from the log and not know about the position.
func (l *Ledger) Commit(ctx context.Context, p domain.Position) error {
	if p.Open() {
		l.open[p.Key] = p
	}
	if err := l.store.Append(ctx, p); err != nil {
		return fmt.Errorf("ledger.Commit: append %s: %w", p.Key, err)
	}
	return nil
}

// Reconcile checks every open position against the resolution source and
// releases the settled ones. A failed check keeps the position open: it
// stays counted as exposure until a check succeeds. Running Reconcile
// twice with no new resolutions leaves the ledger unchanged.
func (l *Ledger) Reconcile(ctx context.Context, checker ports.ResolutionChecker) []domain.Position {
	var released []domain.Position

	for key, p := range l.open {
		res, err := checker.CheckResolution(ctx, p.MarketSlug)
		if err != nil {
			slog.Warn("ledger: resolution check failed, keeping position open",
				"key", key, "err", err)
			continue
		}
		if !res.Resolved {
			continue
		}

		outcome := domain.OutcomeLoss
		if res.WinningLabel == p.BucketLabel {
			outcome = domain.OutcomeWin
		}
		now := time.Now().UTC()
		if err := l.store.MarkResolved(ctx, p.ID, outcome, now); err != nil {
			slog.Warn("ledger: failed to persist resolution, keeping position open",
				"key", key, "err", err)
			continue
		}

		p.Resolved = true
		p.Outcome = outcome
		p.ResolvedAt = &now
		delete(l.open, key)
		released = append(released, p)
		slog.Info("ledger: position resolved",
			"key", key, "outcome", outcome, "cost", fmt.Sprintf("$%.2f", p.Cost))
	}

	return released
}
