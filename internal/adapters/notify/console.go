package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/weatherbot/internal/domain"
	"github.com/alejandrodnm/weatherbot/internal/ports"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador de consola. table activa el formato de
// tabla en los resúmenes de ciclo; sin él se imprime una línea compacta.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyTrade imprime una posición recién abierta.
func (c *Console) NotifyTrade(_ context.Context, p domain.Position) error {
	mode := ""
	if p.Simulated {
		mode = " (DRY RUN)"
	}
	fmt.Fprintf(c.out, "[%s] TRADE%s %s | %s | P=%.3f @ $%.2f | edge %.3f | %.2f shares = $%.2f\n",
		p.CreatedAt.Format("15:04:05"), mode, p.City, p.BucketLabel,
		p.Probability, p.Price, p.Edge, p.Shares, p.Cost)
	return nil
}

// NotifyCycle imprime el resumen del ciclo. Con table activo añade las
// posiciones resueltas en formato tabla.
func (c *Console) NotifyCycle(_ context.Context, s ports.CycleSummary) error {
	now := time.Now().Format("15:04:05")
	mode := ""
	if s.DryRun {
		mode = " dry-run"
	}
	fmt.Fprintf(c.out, "[%s]%s %d mkts %d buckets → admitted:%d placed:%d skipped:%d errors:%d | exposure $%.2f\n",
		now, mode, s.Markets, s.Buckets, s.Admitted, s.Placed, s.Skipped, s.Errors, s.Exposure)

	if c.table && len(s.Resolutions) > 0 {
		c.printResolutions(s.Resolutions)
	} else {
		for _, p := range s.Resolutions {
			fmt.Fprintf(c.out, "  resolved: %s | %s | cost $%.2f\n", p.Key, p.Outcome, p.Cost)
		}
	}
	return nil
}

// Alert imprime una condición severa de forma inconfundible.
func (c *Console) Alert(_ context.Context, msg string) error {
	fmt.Fprintf(c.out, "\n!!! ALERT: %s\n\n", msg)
	return nil
}

func (c *Console) printResolutions(positions []domain.Position) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Bucket", "Outcome", "Cost", "Shares", "Payout")

	for _, p := range positions {
		payout := 0.0
		if p.Outcome == domain.OutcomeWin {
			payout = p.Shares
		}
		table.Append(
			p.MarketSlug,
			p.BucketLabel,
			p.Outcome,
			fmt.Sprintf("$%.2f", p.Cost),
			fmt.Sprintf("%.2f", p.Shares),
			fmt.Sprintf("$%.2f", payout),
		)
	}
	table.Render()
}
