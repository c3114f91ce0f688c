package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutionPrice_LimitBelowQuote(t *testing.T) {
	// límite = round(0.60*0.85) = 0.51, por debajo de la cotización 0.55
	assert.InDelta(t, 0.51, ExecutionPrice(0.60, 0.85, 0.55), 1e-9)
}

func TestExecutionPrice_CrossesQuote(t *testing.T) {
	// límite = round(0.45*0.85) = 0.38, cruza la cotización 0.30 → ejecuta a 0.30
	assert.InDelta(t, 0.30, ExecutionPrice(0.45, 0.85, 0.30), 1e-9)
}

func TestExecutionPrice_Clamps(t *testing.T) {
	assert.InDelta(t, 0.01, ExecutionPrice(0.005, 0.85, 0.5), 1e-9)
	assert.InDelta(t, 0.95, ExecutionPrice(0.999, 1.0, 0.999), 1e-9)
}

func TestKellyStake_Scenario(t *testing.T) {
	// edge 0.15 a precio 0.30, quarter-Kelly sobre bankroll 100:
	// 0.25 × 100 × (0.15 / 0.70) ≈ 5.36
	stake := KellyStake(0.15, 0.30, 0.25, 100)
	assert.InDelta(t, 5.357, stake, 0.01)
}

func TestKellyStake_MonotonicInEdge(t *testing.T) {
	prev := 0.0
	for _, edge := range []float64{0.05, 0.10, 0.15, 0.20, 0.30} {
		stake := KellyStake(edge, 0.30, 0.25, 100)
		assert.Greater(t, stake, prev, "edge %.2f", edge)
		prev = stake
	}
}

func TestKellyStake_DegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, KellyStake(0, 0.30, 0.25, 100))
	assert.Equal(t, 0.0, KellyStake(-0.1, 0.30, 0.25, 100))
	assert.Equal(t, 0.0, KellyStake(0.15, 0.30, 0.25, 0))
	assert.Equal(t, 0.0, KellyStake(0.15, 0.30, 0, 100))
	// precio casi 1: el denominador degenera
	assert.Equal(t, 0.0, KellyStake(0.005, 0.995, 0.25, 100))
}

func TestSharesFor_TruncatesToCents(t *testing.T) {
	// 5.36 / 0.30 = 17.8666... → 17.86
	assert.InDelta(t, 17.86, SharesFor(5.36, 0.30), 1e-9)
	assert.Equal(t, 0.0, SharesFor(5.36, 0))
}
