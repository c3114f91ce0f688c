package notify

import (
	"context"
	"errors"

	"github.com/alejandrodnm/weatherbot/internal/domain"
	"github.com/alejandrodnm/weatherbot/internal/ports"
)

// Multi reparte cada notificación a varios notificadores. Los errores se
// acumulan: un canal caído no silencia a los demás.
type Multi struct {
	targets []ports.Notifier
}

func NewMulti(targets ...ports.Notifier) *Multi {
	return &Multi{targets: targets}
}

func (m *Multi) NotifyTrade(ctx context.Context, p domain.Position) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.NotifyTrade(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) NotifyCycle(ctx context.Context, s ports.CycleSummary) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.NotifyCycle(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Alert(ctx context.Context, msg string) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.Alert(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
