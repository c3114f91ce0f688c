package ports

import (
	"context"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

// CycleSummary resume un ciclo completo para notificación.
type CycleSummary struct {
	Markets     int
	Buckets     int
	Admitted    int
	Placed      int
	Skipped     int
	Errors      int
	Exposure    float64 // exposición comprometida tras el ciclo
	DryRun      bool
	Resolutions []domain.Position // posiciones resueltas durante el ciclo
}

// Notifier presenta trades y resúmenes de ciclo al usuario.
type Notifier interface {
	// NotifyTrade anuncia una posición recién abierta.
	NotifyTrade(ctx context.Context, p domain.Position) error

	// NotifyCycle muestra el resumen al final de cada ciclo.
	NotifyCycle(ctx context.Context, s CycleSummary) error

	// Alert comunica una condición severa que requiere atención manual,
	// como una orden enviada cuya persistencia falló.
	Alert(ctx context.Context, msg string) error
}
