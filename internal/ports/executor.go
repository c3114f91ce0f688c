package ports

import (
	"context"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

// OrderExecutor signs and submits real orders to the Polymarket CLOB.
type OrderExecutor interface {
	// PlaceOrder signs and submits a limit GTC buy order.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.PlacedOrder, error)
}
