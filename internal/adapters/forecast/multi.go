package forecast

// Multi combina varias fuentes de pronóstico en un solo provider.
// NOAA solo responde para ciudades de EEUU; Open-Meteo para todas.

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
	"github.com/alejandrodnm/weatherbot/internal/ports"
)

// Multi implementa ports.ForecastProvider agregando otras fuentes.
type Multi struct {
	providers []ports.ForecastProvider
}

// NewMulti crea el agregado. El orden no importa: el modelo de
// probabilidad pondera por nombre de fuente, no por posición.
func NewMulti(providers ...ports.ForecastProvider) *Multi {
	return &Multi{providers: providers}
}

// FetchSignals concatena las señales de todas las fuentes. Una fuente
// caída no tumba a las demás: se loggea y se sigue. Solo devuelve error
// si ninguna fuente aportó nada.
func (m *Multi) FetchSignals(ctx context.Context, city domain.City, date time.Time) ([]domain.ForecastSignal, error) {
	var all []domain.ForecastSignal
	var lastErr error

	for _, p := range m.providers {
		signals, err := p.FetchSignals(ctx, city, date)
		if err != nil {
			slog.Warn("forecast: source failed",
				"city", city.Name, "err", err)
			lastErr = err
		}
		all = append(all, signals...)
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return all, nil
}
