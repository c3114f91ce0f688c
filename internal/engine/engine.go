package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/weatherbot/internal/domain"
	"github.com/alejandrodnm/weatherbot/internal/ports"
)

const (
	forecastConcurrency = 4
	orderPacing         = 500 * time.Millisecond
)

// Config holds the orchestrator settings.
type Config struct {
	Interval time.Duration
	DryRun   bool
	Cities   []domain.City
}

// Engine drives one scan cycle: reconcile resolutions, discover markets,
// fetch forecasts, evaluate every bucket, place and persist orders.
type Engine struct {
	markets      ports.MarketProvider
	forecasts    ports.ForecastProvider
	observations ports.ObservationProvider
	resolution   ports.ResolutionChecker
	executor     ports.OrderExecutor
	notifier     ports.Notifier

	model     *domain.Model
	evaluator *Evaluator
	sizer     *Sizer
	ledger    *Ledger

	cfg Config

	// simulated tracks dry-run entries for the lifetime of the process,
	// so back-to-back dry cycles do not announce the same bucket twice.
	simulated map[string]bool
}

// New wires the engine. observations may be nil when no intraday source
// is configured.
func New(
	markets ports.MarketProvider,
	forecasts ports.ForecastProvider,
	observations ports.ObservationProvider,
	resolution ports.ResolutionChecker,
	executor ports.OrderExecutor,
	notifier ports.Notifier,
	model *domain.Model,
	evaluator *Evaluator,
	sizer *Sizer,
	ledger *Ledger,
	cfg Config,
) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	return &Engine{
		markets:      markets,
		forecasts:    forecasts,
		observations: observations,
		resolution:   resolution,
		executor:     executor,
		notifier:     notifier,
		model:        model,
		evaluator:    evaluator,
		sizer:        sizer,
		ledger:       ledger,
		cfg:          cfg,
		simulated:    make(map[string]bool),
	}
}

// cityForecast is the forecast state for one city and date, gathered
// before any decision runs.
type cityForecast struct {
	signals  []domain.ForecastSignal
	point    float64
	hasPoint bool
}

// RunOnce executes one full cycle. Per-bucket failures are isolated; the
// only errors returned are those that invalidate the whole cycle, like a
// discovery failure.
func (e *Engine) RunOnce(ctx context.Context) (ports.CycleSummary, error) {
	summary := ports.CycleSummary{DryRun: e.cfg.DryRun}

	// 1. Reconciliation: release settled positions before measuring exposure.
	summary.Resolutions = e.ledger.Reconcile(ctx, e.resolution)

	// 2. Discovery.
	today := time.Now().UTC()
	dates := []time.Time{today, today.AddDate(0, 0, 1)}
	markets, err := e.markets.DiscoverMarkets(ctx, e.cfg.Cities, dates)
	if err != nil {
		return summary, fmt.Errorf("engine.RunOnce: discover markets: %w", err)
	}
	summary.Markets = len(markets)
	if len(markets) == 0 {
		slog.Info("engine: no weather markets found")
		return summary, nil
	}

	// 3. Forecasts: fetch everything concurrently, decide sequentially.
	forecasts := e.fetchForecasts(ctx, markets)

	// 4. Decisions, one bucket at a time.
	for _, market := range markets {
		fc, ok := forecasts[forecastKey(market.City, market.Date)]
		if !ok || len(fc.signals) == 0 {
			slog.Debug("engine: no forecast for market", "slug", market.Slug)
			summary.Skipped += len(market.Buckets)
			continue
		}

		probs, method := e.model.EstimateAll(market, fc.signals)

		for _, bucket := range market.Buckets {
			summary.Buckets++

			prob, ok := probs[bucket.Label]
			if !ok {
				summary.Skipped++
				continue
			}

			opp, reason := e.evaluator.Admit(market, bucket, prob, method, fc.point, fc.hasPoint)
			if reason != RejectNone {
				if reason == RejectInvalidInput {
					slog.Warn("engine: bucket rejected",
						"slug", market.Slug, "bucket", bucket.Label, "reason", string(reason))
				}
				summary.Skipped++
				continue
			}
			summary.Admitted++

			if e.ledger.Has(opp.Key()) || (e.cfg.DryRun && e.simulated[opp.Key()]) {
				slog.Debug("engine: already holding bucket", "key", opp.Key())
				summary.Skipped++
				continue
			}

			sizing, err := e.sizer.Size(opp, e.ledger.RemainingBudget())
			if err != nil {
				slog.Debug("engine: sizing suppressed order",
					"key", opp.Key(), "reason", err)
				summary.Skipped++
				continue
			}

			if err := e.enterPosition(ctx, opp, sizing, &summary); err != nil {
				slog.Error("engine: order attempt failed",
					"key", opp.Key(), "err", err)
				summary.Errors++
				continue
			}
			summary.Placed++

			select {
			case <-time.After(orderPacing):
			case <-ctx.Done():
				summary.Exposure = e.ledger.CommittedExposure()
				return summary, ctx.Err()
			}
		}
	}

	summary.Exposure = e.ledger.CommittedExposure()
	if err := e.notifier.NotifyCycle(ctx, summary); err != nil {
		slog.Warn("engine: cycle notification failed", "err", err)
	}
	return summary, nil
}

// enterPosition places the order (unless dry-run), persists the position,
// and announces it. The order of operations is fixed: attempt order, on
// success durably append, only then continue. A persistence failure after
// a placed order is the one severe path and raises an alert.
func (e *Engine) enterPosition(
	ctx context.Context,
	opp domain.Opportunity,
	sizing Sizing,
	summary *ports.CycleSummary,
) error {
	position := domain.Position{
		ID:          uuid.NewString(),
		Key:         opp.Key(),
		MarketSlug:  opp.MarketSlug,
		BucketLabel: opp.BucketLabel,
		TokenID:     opp.TokenID,
		Question:    opp.Question,
		City:        opp.City,
		Side:        domain.SideBuyYes,
		Probability: opp.Probability,
		Price:       opp.ExecPrice,
		Edge:        opp.Edge,
		Shares:      sizing.Shares,
		Stake:       sizing.Stake,
		Cost:        sizing.Cost,
		Simulated:   e.cfg.DryRun,
		CreatedAt:   time.Now().UTC(),
	}

	if e.cfg.DryRun {
		slog.Info("engine: dry run, order not sent",
			"key", opp.Key(),
			"shares", fmt.Sprintf("%.2f", sizing.Shares),
			"price", fmt.Sprintf("$%.2f", opp.ExecPrice))
		e.simulated[opp.Key()] = true
	} else {
		placed, err := e.executor.PlaceOrder(ctx, domain.OrderRequest{
			TokenID:     opp.TokenID,
			MarketSlug:  opp.MarketSlug,
			BucketLabel: opp.BucketLabel,
			Price:       opp.ExecPrice,
			Shares:      sizing.Shares,
			NegRisk:     opp.NegRisk,
		})
		if err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		slog.Info("engine: order placed",
			"key", opp.Key(),
			"order_id", placed.OrderID,
			"status", placed.Status,
			"shares", fmt.Sprintf("%.2f", sizing.Shares),
			"price", fmt.Sprintf("$%.2f", opp.ExecPrice),
			"edge", fmt.Sprintf("%.3f", opp.Edge))
	}

	if err := e.ledger.Commit(ctx, position); err != nil {
		if !e.cfg.DryRun {
			msg := fmt.Sprintf(
				"position %s placed but NOT persisted (%v); next restart will not see it, reconcile against the exchange manually",
				position.Key, err)
			slog.Error("engine: persistence failure after placed order", "key", position.Key, "err", err)
			if alertErr := e.notifier.Alert(ctx, msg); alertErr != nil {
				slog.Error("engine: alert delivery failed", "err", alertErr)
			}
			return err
		}
		slog.Warn("engine: failed to persist dry run position", "key", position.Key, "err", err)
	}

	if err := e.notifier.NotifyTrade(ctx, position); err != nil {
		slog.Warn("engine: trade notification failed", "key", position.Key, "err", err)
	}
	return nil
}

// fetchForecasts gathers signals for every distinct city/date pair in the
// market set. All fetches complete before any decision runs, so a slow
// source cannot interleave with order placement. Failed pairs are simply
// absent from the result.
func (e *Engine) fetchForecasts(ctx context.Context, markets []domain.Market) map[string]cityForecast {
	type pair struct {
		city domain.City
		date time.Time
	}

	seen := make(map[string]pair)
	for _, m := range markets {
		key := forecastKey(m.City, m.Date)
		if _, ok := seen[key]; ok {
			continue
		}
		city, ok := domain.LookupCity(m.City)
		if !ok {
			slog.Warn("engine: market city not in catalogue", "city", m.City, "slug", m.Slug)
			continue
		}
		date, err := time.Parse("2006-01-02", m.Date)
		if err != nil {
			slog.Warn("engine: unparseable market date", "date", m.Date, "slug", m.Slug)
			continue
		}
		seen[key] = pair{city: city, date: date}
	}

	var mu sync.Mutex
	out := make(map[string]cityForecast, len(seen))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(forecastConcurrency)
	for key, p := range seen {
		g.Go(func() error {
			signals, err := e.forecasts.FetchSignals(gctx, p.city, p.date)
			if err != nil {
				slog.Warn("engine: forecast fetch failed",
					"city", p.city.Name, "date", p.date.Format("2006-01-02"), "err", err)
				if len(signals) == 0 {
					return nil
				}
			}

			// Intraday revision: today's high cannot end below what has
			// already been observed, so the signals themselves are raised
			// and tightened before the model runs.
			if e.observations != nil && sameDay(p.date, time.Now().UTC()) {
				if observed, err := e.observations.CurrentTemp(gctx, p.city); err == nil {
					signals = domain.ReviseWithObservation(signals, observed)
				} else {
					slog.Debug("engine: observation fetch failed",
						"city", p.city.Name, "err", err)
				}
			}

			fc := cityForecast{signals: signals}
			fc.point, fc.hasPoint = e.model.BlendedPointEstimate(signals)

			mu.Lock()
			out[key] = fc
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Run executes cycles until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine: starting",
		"interval", e.cfg.Interval,
		"dry_run", e.cfg.DryRun,
		"cities", len(e.cfg.Cities))

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := e.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("engine: cycle failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func forecastKey(city, date string) string {
	return city + "|" + date
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
