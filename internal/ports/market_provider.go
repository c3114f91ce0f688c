package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

// MarketProvider descubre los mercados de temperatura activos en Gamma.
type MarketProvider interface {
	// DiscoverMarkets busca los eventos de temperatura máxima para las
	// ciudades dadas en las fechas dadas (hoy y mañana, normalmente).
	// Un slug sin evento no es error: simplemente no aparece en el resultado.
	DiscoverMarkets(ctx context.Context, cities []domain.City, dates []time.Time) ([]domain.Market, error)
}

// ResolutionChecker consulta si un mercado ya resolvió y qué bucket ganó.
type ResolutionChecker interface {
	CheckResolution(ctx context.Context, slug string) (domain.Resolution, error)
}
