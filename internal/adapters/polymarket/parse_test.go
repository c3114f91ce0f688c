package polymarket

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

func TestWeatherSlug(t *testing.T) {
	date := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "highest-temperature-in-nyc-on-march-1-2026", WeatherSlug("nyc", date))

	date = time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "highest-temperature-in-london-on-december-25-2026", WeatherSlug("london", date))
}

func TestCitySlugOf(t *testing.T) {
	assert.Equal(t, "nyc", citySlugOf("highest-temperature-in-nyc-on-march-1-2026"))
	assert.Equal(t, "london", citySlugOf("highest-temperature-in-london-on-december-25-2026"))
	assert.Equal(t, "", citySlugOf("will-it-rain-in-nyc"))
}

func TestParseBucket_Range(t *testing.T) {
	min, max, label, ok := ParseBucket("Will the highest temperature in NYC be 38-39°F?", domain.Fahrenheit)
	require.True(t, ok)
	assert.Equal(t, 38.0, min)
	assert.Equal(t, 39.0, max)
	assert.Equal(t, "38-39°F", label)
}

func TestParseBucket_EnDashRange(t *testing.T) {
	min, max, label, ok := ParseBucket("Highest temperature 38–39°F in NYC?", domain.Fahrenheit)
	require.True(t, ok)
	assert.Equal(t, 38.0, min)
	assert.Equal(t, 39.0, max)
	assert.Equal(t, "38-39°F", label)
}

func TestParseBucket_OrHigher(t *testing.T) {
	min, max, label, ok := ParseBucket("Will the highest temperature be 52°F or higher?", domain.Fahrenheit)
	require.True(t, ok)
	assert.Equal(t, 52.0, min)
	assert.True(t, math.IsInf(max, 1))
	assert.Equal(t, "52°F or higher", label)
}

func TestParseBucket_OrLower(t *testing.T) {
	min, max, label, ok := ParseBucket("Will the highest temperature be 37°F or lower?", domain.Fahrenheit)
	require.True(t, ok)
	assert.True(t, math.IsInf(min, -1))
	assert.Equal(t, 37.0, max)
	assert.Equal(t, "37°F or lower", label)
}

func TestParseBucket_SingleDegree(t *testing.T) {
	min, max, label, ok := ParseBucket("Will the highest temperature in London be 9°C?", domain.Celsius)
	require.True(t, ok)
	assert.Equal(t, 9.0, min)
	assert.Equal(t, 9.0, max)
	assert.Equal(t, "9°C", label)
}

func TestParseBucket_UnitFromQuestionOverridesDefault(t *testing.T) {
	// La question trae °C explícito aunque el default sea °F.
	_, _, label, ok := ParseBucket("Highest temperature 8-9°C in Seoul?", domain.Fahrenheit)
	require.True(t, ok)
	assert.Equal(t, "8-9°C", label)
}

func TestParseBucket_Unrecognizable(t *testing.T) {
	_, _, _, ok := ParseBucket("Will it rain in NYC tomorrow?", domain.Fahrenheit)
	assert.False(t, ok)
}

func TestParseBucket_IgnoresYears(t *testing.T) {
	// "2026" está fuera del rango razonable de temperaturas.
	min, max, _, ok := ParseBucket("On March 1 2026, will the high be 40-41°F?", domain.Fahrenheit)
	require.True(t, ok)
	assert.Equal(t, 40.0, min)
	assert.Equal(t, 41.0, max)
}
