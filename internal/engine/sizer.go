package engine

import (
	"errors"
	"math"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

// Sizing outcomes that suppress order emission. Neither is a failure:
// the cycle logs them and moves on to the next bucket.
var (
	// ErrExposureExhausted means the exposure cap leaves no room.
	ErrExposureExhausted = errors.New("exposure budget exhausted")

	// ErrStakeTooSmall means the Kelly stake or share count fell below
	// the exchange minimums.
	ErrStakeTooSmall = errors.New("stake below minimum order size")
)

// SizerConfig holds the capital policy. Bankroll is a policy number used
// inside the Kelly formula; the total exposure cap lives in the ledger.
// They are distinct on purpose and configured separately.
type SizerConfig struct {
	KellyFraction float64
	Bankroll      float64
	MaxPerBucket  float64
	MinShares     float64
	MinStake      float64
}

// Sizing is a fully specified order size for an admitted opportunity.
type Sizing struct {
	Stake  float64 // clamped Kelly stake in USDC
	Shares float64 // stake / exec price, floored to 2 decimals
	Cost   float64 // shares * exec price
}

// Sizer turns admitted opportunities into order sizes.
type Sizer struct {
	cfg SizerConfig
}

func NewSizer(cfg SizerConfig) *Sizer {
	if cfg.KellyFraction <= 0 {
		cfg.KellyFraction = 0.25
	}
	if cfg.MaxPerBucket <= 0 {
		cfg.MaxPerBucket = 10.0
	}
	if cfg.MinShares <= 0 {
		cfg.MinShares = 5.0
	}
	if cfg.MinStake <= 0 {
		cfg.MinStake = 0.50
	}
	return &Sizer{cfg: cfg}
}

// Size computes the stake for an admitted opportunity. remainingBudget is
// the exposure headroom reported by the ledger. The returned error is one
// of the sizing outcomes above, or nil.
func (s *Sizer) Size(opp domain.Opportunity, remainingBudget float64) (Sizing, error) {
	if remainingBudget <= 0 {
		return Sizing{}, ErrExposureExhausted
	}

	stake := domain.KellyStake(opp.Edge, opp.ExecPrice, s.cfg.KellyFraction, s.cfg.Bankroll)
	stake = math.Min(stake, s.cfg.MaxPerBucket)
	if stake < s.cfg.MinStake {
		return Sizing{}, ErrStakeTooSmall
	}

	capped := math.Min(stake, remainingBudget)
	if capped < s.cfg.MinStake {
		return Sizing{}, ErrExposureExhausted
	}

	shares := domain.SharesFor(capped, opp.ExecPrice)
	if shares < s.cfg.MinShares {
		if capped < stake {
			return Sizing{}, ErrExposureExhausted
		}
		return Sizing{}, ErrStakeTooSmall
	}

	return Sizing{
		Stake:  capped,
		Shares: shares,
		Cost:   shares * opp.ExecPrice,
	}, nil
}
