package domain

import "time"

// Side de una posición. Solo compramos YES sobre buckets de temperatura.
const SideBuyYes = "BUY_YES"

// Position es una entrada del registro de operaciones. El log es
// append-only: la resolución se marca con un update de Resolved/Outcome,
// nunca se borra nada.
type Position struct {
	ID          string     `json:"id"`
	Key         string     `json:"key"` // PositionKey(slug, bucket)
	MarketSlug  string     `json:"market_slug"`
	BucketLabel string     `json:"bucket_label"`
	TokenID     string     `json:"token_id"`
	Question    string     `json:"question"`
	City        string     `json:"city"`
	Side        string     `json:"side"`
	Probability float64    `json:"probability"` // fair value estimado al abrir
	Price       float64    `json:"price"`       // precio efectivo de ejecución
	Edge        float64    `json:"edge"`
	Shares      float64    `json:"shares"`
	Stake       float64    `json:"stake"` // stake Kelly antes de truncar shares
	Cost        float64    `json:"cost"`  // Shares * Price, lo que cuenta como exposición
	Simulated   bool       `json:"simulated"`
	Resolved    bool       `json:"resolved"`
	Outcome     string     `json:"outcome,omitempty"` // WIN, LOSS
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Open indica si la posición sigue contando para exposición y dedup.
func (p Position) Open() bool {
	return !p.Resolved && !p.Simulated
}

// Resultados posibles de una posición resuelta.
const (
	OutcomeWin  = "WIN"
	OutcomeLoss = "LOSS"
)
