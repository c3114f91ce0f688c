package noaa

// Cliente del API de NOAA (api.weather.gov). Solo cubre ciudades de EEUU
// y no necesita API key, solo un User-Agent identificable. Es la fuente
// primaria para mercados en °F: las estaciones que resuelven los mercados
// son las mismas que alimentan estos pronósticos.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

const (
	defaultBase = "https://api.weather.gov"
	userAgent   = "weatherbot/1.0 (weather-markets)"

	// Error típico del pronóstico NOAA: ~3.5°F a un día, creciendo después.
	baseSigmaF   = 3.5
	sigmaPerDayF = 2.0
)

// Client implementa ports.ForecastProvider para ciudades de EEUU.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

func NewClient(base string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(2, 2),
	}
}

type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []forecastPeriod `json:"periods"`
	} `json:"properties"`
}

type forecastPeriod struct {
	Temperature     float64 `json:"temperature"`
	TemperatureUnit string  `json:"temperatureUnit"`
	IsDaytime       bool    `json:"isDaytime"`
	StartTime       string  `json:"startTime"`
}

// FetchSignals devuelve la máxima diurna pronosticada por NOAA para la
// fecha dada. Ciudades fuera de EEUU devuelven vacío sin error.
func (c *Client) FetchSignals(ctx context.Context, city domain.City, date time.Time) ([]domain.ForecastSignal, error) {
	if city.Unit != domain.Fahrenheit {
		return nil, nil
	}

	// El endpoint points traduce coordenadas al grid del forecast office.
	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.base, city.Lat, city.Lon)
	var points pointsResponse
	if err := c.get(ctx, pointsURL, &points); err != nil {
		return nil, fmt.Errorf("noaa.FetchSignals %s: points: %w", city.Name, err)
	}
	if points.Properties.Forecast == "" {
		return nil, fmt.Errorf("noaa.FetchSignals %s: no forecast URL", city.Name)
	}

	var forecast forecastResponse
	if err := c.get(ctx, points.Properties.Forecast, &forecast); err != nil {
		return nil, fmt.Errorf("noaa.FetchSignals %s: forecast: %w", city.Name, err)
	}

	day := date.Format("2006-01-02")
	for _, period := range forecast.Properties.Periods {
		if !period.IsDaytime || !strings.HasPrefix(period.StartTime, day) {
			continue
		}

		temp := period.Temperature
		if period.TemperatureUnit == "C" {
			temp = domain.CToF(temp)
		}

		horizon := horizonDays(date)
		return []domain.ForecastSignal{{
			Source:        "noaa",
			PointEstimate: temp,
			Dispersion:    baseSigmaF + float64(horizon)*sigmaPerDayF,
			HorizonDays:   horizon,
		}}, nil
	}

	return nil, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/geo+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func horizonDays(date time.Time) int {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	d := int(target.Sub(today).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
