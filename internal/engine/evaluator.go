package engine

import (
	"github.com/alejandrodnm/weatherbot/internal/domain"
)

// RejectReason explains why a bucket was not admitted.
type RejectReason string

const (
	RejectNone         RejectReason = ""
	RejectInvalidInput RejectReason = "invalid_input"
	RejectPriceTooLow  RejectReason = "price_too_low"
	RejectNearBoundary RejectReason = "near_boundary"
	RejectEdgeTooThin  RejectReason = "edge_too_thin"
)

// EvaluatorConfig holds the admission thresholds.
type EvaluatorConfig struct {
	// MinEdge is the minimum edge at the execution price. The boundary is
	// inclusive: edge exactly equal to MinEdge admits.
	MinEdge float64

	// ExecFraction is the fraction of our fair value used as the limit
	// price. Weather books are wide, so we act as makers and bid below
	// our probability.
	ExecFraction float64

	// MinMarketPrice rejects quotes near zero, which are unreliable.
	MinMarketPrice float64

	// BufferF and BufferC are the proximity buffers in degrees. A bucket
	// whose boundary sits within the buffer of the blended point forecast
	// is skipped: a small forecast shift would flip the outcome.
	BufferF float64
	BufferC float64
}

// Evaluator applies the admission filters to one bucket of one market.
// Filters run cheapest first and short-circuit on the first rejection.
type Evaluator struct {
	cfg EvaluatorConfig
}

// NewEvaluator builds an evaluator with sane fallbacks for zero values.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	if cfg.MinEdge <= 0 {
		cfg.MinEdge = 0.15
	}
	if cfg.ExecFraction <= 0 {
		cfg.ExecFraction = 0.85
	}
	if cfg.MinMarketPrice <= 0 {
		cfg.MinMarketPrice = 0.02
	}
	if cfg.BufferF <= 0 {
		cfg.BufferF = 3.0
	}
	if cfg.BufferC <= 0 {
		cfg.BufferC = 2.0
	}
	return &Evaluator{cfg: cfg}
}

// Admit evaluates a single bucket. pointEstimate is the blended point
// forecast for the market's city and date; hasPoint is false when no point
// source responded, in which case the proximity filter is skipped and only
// the probability-based filters apply.
//
// The returned Opportunity is only meaningful when reason == RejectNone.
func (e *Evaluator) Admit(
	market domain.Market,
	bucket domain.Bucket,
	probability float64,
	method domain.Method,
	pointEstimate float64,
	hasPoint bool,
) (domain.Opportunity, RejectReason) {
	if err := domain.ValidateInputs(probability, bucket.YesPrice); err != nil {
		return domain.Opportunity{}, RejectInvalidInput
	}
	if err := bucket.Validate(); err != nil {
		return domain.Opportunity{}, RejectInvalidInput
	}

	if bucket.YesPrice < e.cfg.MinMarketPrice {
		return domain.Opportunity{}, RejectPriceTooLow
	}

	if hasPoint {
		buffer := e.cfg.BufferF
		if market.Unit == domain.Celsius {
			buffer = e.cfg.BufferC
		}
		if bucket.DistanceToBoundary(pointEstimate) < buffer {
			return domain.Opportunity{}, RejectNearBoundary
		}
	}

	// Edge is measured at the price the order will actually execute at.
	// Our limit sits at ExecFraction of fair value; if it crosses the
	// quote the order fills at the quote instead.
	execPrice := domain.ExecutionPrice(probability, e.cfg.ExecFraction, bucket.YesPrice)
	edge := probability - execPrice
	if edge < e.cfg.MinEdge {
		return domain.Opportunity{}, RejectEdgeTooThin
	}

	return domain.Opportunity{
		MarketSlug:  market.Slug,
		BucketLabel: bucket.Label,
		TokenID:     bucket.TokenID,
		Question:    market.Question,
		City:        market.City,
		NegRisk:     market.NegRisk,
		Probability: probability,
		MarketPrice: bucket.YesPrice,
		ExecPrice:   execPrice,
		Edge:        edge,
		Method:      method,
	}, RejectNone
}
