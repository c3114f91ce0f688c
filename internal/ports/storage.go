package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

// PositionStore persiste el registro de posiciones. Es append-only:
// abrir añade una fila, resolver la actualiza, nada se borra.
type PositionStore interface {
	// Append registra una posición recién abierta.
	Append(ctx context.Context, p domain.Position) error

	// MarkResolved marca una posición como resuelta con su resultado.
	MarkResolved(ctx context.Context, id string, outcome string, at time.Time) error

	// ReadSince devuelve las posiciones creadas a partir del instante dado.
	ReadSince(ctx context.Context, since time.Time) ([]domain.Position, error)

	// ReadAll devuelve todas las posiciones, más recientes primero.
	ReadAll(ctx context.Context) ([]domain.Position, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
