package engine_test

import (
	"context"
	"sync"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
	"github.com/alejandrodnm/weatherbot/internal/ports"
)

// memStore is an in-memory ports.PositionStore.
type memStore struct {
	mu        sync.Mutex
	positions []domain.Position
	appendErr error
	readErr   error
}

func (s *memStore) Append(_ context.Context, p domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.positions = append(s.positions, p)
	return nil
}

func (s *memStore) MarkResolved(_ context.Context, id, outcome string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.positions {
		if s.positions[i].ID == id {
			s.positions[i].Resolved = true
			s.positions[i].Outcome = outcome
			s.positions[i].ResolvedAt = &at
			return nil
		}
	}
	return nil
}

func (s *memStore) ReadSince(_ context.Context, since time.Time) ([]domain.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	var out []domain.Position
	for _, p := range s.positions {
		if !p.CreatedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) ReadAll(_ context.Context) ([]domain.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Position(nil), s.positions...), nil
}

func (s *memStore) Close() error { return nil }

// stubChecker resolves markets from a fixed map.
type stubChecker struct {
	resolutions map[string]domain.Resolution
	err         error
	calls       int
}

func (c *stubChecker) CheckResolution(_ context.Context, slug string) (domain.Resolution, error) {
	c.calls++
	if c.err != nil {
		return domain.Resolution{}, c.err
	}
	return c.resolutions[slug], nil
}

// stubExecutor records placed orders.
type stubExecutor struct {
	placed []domain.OrderRequest
	err    error
}

func (e *stubExecutor) PlaceOrder(_ context.Context, req domain.OrderRequest) (domain.PlacedOrder, error) {
	if e.err != nil {
		return domain.PlacedOrder{}, e.err
	}
	e.placed = append(e.placed, req)
	return domain.PlacedOrder{OrderID: "order-" + req.BucketLabel, Status: "live"}, nil
}

// stubNotifier records notifications.
type stubNotifier struct {
	trades []domain.Position
	cycles []ports.CycleSummary
	alerts []string
}

func (n *stubNotifier) NotifyTrade(_ context.Context, p domain.Position) error {
	n.trades = append(n.trades, p)
	return nil
}

func (n *stubNotifier) NotifyCycle(_ context.Context, s ports.CycleSummary) error {
	n.cycles = append(n.cycles, s)
	return nil
}

func (n *stubNotifier) Alert(_ context.Context, msg string) error {
	n.alerts = append(n.alerts, msg)
	return nil
}

// stubMarkets returns a fixed market set.
type stubMarkets struct {
	markets []domain.Market
	err     error
}

func (m *stubMarkets) DiscoverMarkets(_ context.Context, _ []domain.City, _ []time.Time) ([]domain.Market, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.markets, nil
}

// stubForecasts returns the same signals for every city/date.
type stubForecasts struct {
	signals []domain.ForecastSignal
	err     error
}

func (f *stubForecasts) FetchSignals(_ context.Context, _ domain.City, _ time.Time) ([]domain.ForecastSignal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.signals, nil
}

// stubObservations returns a fixed current temperature.
type stubObservations struct {
	temp float64
	err  error
}

func (o *stubObservations) CurrentTemp(_ context.Context, _ domain.City) (float64, error) {
	if o.err != nil {
		return 0, o.err
	}
	return o.temp, nil
}
