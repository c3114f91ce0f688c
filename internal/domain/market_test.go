package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketContains_ContinuityCorrection(t *testing.T) {
	b := Bucket{Label: "38-39°F", MinTemp: 38, MaxTemp: 39}

	// cubre [37.5, 39.5)
	assert.True(t, b.Contains(37.5))
	assert.True(t, b.Contains(38.7))
	assert.False(t, b.Contains(39.5))
	assert.False(t, b.Contains(37.49))
}

func TestBucketContains_PartitionHasNoGaps(t *testing.T) {
	buckets := []Bucket{
		{Label: "37°F or lower", MinTemp: math.Inf(-1), MaxTemp: 37},
		{Label: "38-39°F", MinTemp: 38, MaxTemp: 39},
		{Label: "40-41°F", MinTemp: 40, MaxTemp: 41},
		{Label: "42°F or higher", MinTemp: 42, MaxTemp: math.Inf(1)},
	}

	// toda temperatura cae en exactamente un bucket
	for temp := 30.0; temp < 50.0; temp += 0.25 {
		count := 0
		for _, b := range buckets {
			if b.Contains(temp) {
				count++
			}
		}
		assert.Equal(t, 1, count, "temp %.2f", temp)
	}
}

func TestBucketValidate(t *testing.T) {
	assert.NoError(t, Bucket{Label: "38-39°F", MinTemp: 38, MaxTemp: 39}.Validate())
	assert.NoError(t, Bucket{Label: "42°F or higher", MinTemp: 42, MaxTemp: math.Inf(1)}.Validate())

	assert.Error(t, Bucket{Label: "bad", MinTemp: 40, MaxTemp: 38}.Validate())
	assert.Error(t, Bucket{Label: "bad", MinTemp: math.NaN(), MaxTemp: 38}.Validate())
	assert.Error(t, Bucket{Label: "bad", MinTemp: math.Inf(1), MaxTemp: math.Inf(1)}.Validate())
}

func TestDistanceToBoundary(t *testing.T) {
	b := Bucket{Label: "38-39°F", MinTemp: 38, MaxTemp: 39}

	// bordes efectivos en 37.5 y 39.5
	assert.InDelta(t, 1.0, b.DistanceToBoundary(38.5), 1e-9)
	assert.InDelta(t, 0.5, b.DistanceToBoundary(40.0), 1e-9)
	assert.InDelta(t, 2.5, b.DistanceToBoundary(35.0), 1e-9)

	open := Bucket{Label: "42°F or higher", MinTemp: 42, MaxTemp: math.Inf(1)}
	assert.InDelta(t, 3.5, open.DistanceToBoundary(45.0), 1e-9)
}

func TestValidateInputs(t *testing.T) {
	assert.NoError(t, ValidateInputs(0.45, 0.30))

	for _, tc := range []struct{ p, price float64 }{
		{0, 0.30}, {1, 0.30}, {-0.1, 0.30}, {1.1, 0.30},
		{0.45, 0}, {0.45, 1}, {0.45, -0.2}, {0.45, 1.5},
	} {
		err := ValidateInputs(tc.p, tc.price)
		require.Error(t, err, "p=%.2f price=%.2f", tc.p, tc.price)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestPositionKey(t *testing.T) {
	key := PositionKey("highest-temperature-in-nyc-on-march-1-2026", "38-39°F")
	assert.Equal(t, "highest-temperature-in-nyc-on-march-1-2026|38-39°F", key)
}

func TestLookupCity(t *testing.T) {
	nyc, ok := LookupCity("NYC")
	require.True(t, ok)
	assert.Equal(t, Fahrenheit, nyc.Unit)

	alias, ok := LookupCity("new york")
	require.True(t, ok)
	assert.Equal(t, "nyc", alias.Name)

	london, ok := LookupCity("london")
	require.True(t, ok)
	assert.Equal(t, Celsius, london.Unit)

	_, ok = LookupCity("atlantis")
	assert.False(t, ok)
}

func TestCities_ReportsUnknown(t *testing.T) {
	cities, unknown := Cities([]string{"nyc", "gotham"}, []string{"london"})
	assert.Len(t, cities, 2)
	assert.Equal(t, []string{"gotham"}, unknown)
}

func TestTempConversions(t *testing.T) {
	assert.InDelta(t, 32.0, CToF(0), 1e-9)
	assert.InDelta(t, 100.0, FToC(212), 1e-9)
}
