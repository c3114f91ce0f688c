package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

// ForecastProvider obtiene señales de pronóstico para una ciudad y fecha.
type ForecastProvider interface {
	// FetchSignals devuelve las señales disponibles en la unidad de la
	// ciudad. Puede devolver señales parciales junto con un error si
	// alguna fuente falló pero otras respondieron.
	FetchSignals(ctx context.Context, city domain.City, date time.Time) ([]domain.ForecastSignal, error)
}

// ObservationProvider lee la temperatura observada actual de una ciudad.
// Se usa para el piso intradía: la máxima del día no puede quedar por
// debajo de lo ya observado.
type ObservationProvider interface {
	CurrentTemp(ctx context.Context, city domain.City) (float64, error)
}
