package openmeteo

// Cliente de Open-Meteo. Dos endpoints:
//
//   api.open-meteo.com/v1/forecast   — multi-modelo determinista, 3 modelos
//                                      (gfs, icon, ecmwf) en una sola llamada
//   ensemble-api.open-meteo.com      — miembros de ensemble (ecmwf_ifs025)
//
// Sin API key. Las temperaturas llegan en °C y se convierten a la unidad
// de la ciudad, con la corrección de sesgo de estación configurada (los
// modelos de malla suelen leer por debajo de las estaciones que resuelven
// los mercados).

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

const (
	defaultForecastBase = "https://api.open-meteo.com"
	defaultEnsembleBase = "https://ensemble-api.open-meteo.com"

	ensembleModel = "ecmwf_ifs025"

	// Open-Meteo permite ~600 req/min sin key; nos quedamos muy por debajo.
	requestsPerSec = 5
)

var pointModels = []string{"gfs_seamless", "icon_seamless", "ecmwf_ifs025"}

// Client implementa ports.ForecastProvider y ports.ObservationProvider.
type Client struct {
	http         *http.Client
	forecastBase string
	ensembleBase string
	biasF        float64
	biasC        float64
	limiter      *rate.Limiter
}

// NewClient crea un cliente. Bases vacías usan los URLs de producción;
// los sesgos de estación vienen de la configuración (sources.station_bias_*).
func NewClient(forecastBase, ensembleBase string, stationBiasF, stationBiasC float64) *Client {
	if forecastBase == "" {
		forecastBase = defaultForecastBase
	}
	if ensembleBase == "" {
		ensembleBase = defaultEnsembleBase
	}
	return &Client{
		http:         &http.Client{Timeout: 20 * time.Second},
		forecastBase: forecastBase,
		ensembleBase: ensembleBase,
		biasF:        stationBiasF,
		biasC:        stationBiasC,
		limiter:      rate.NewLimiter(requestsPerSec, 2),
	}
}

// dailyResponse cubre ambos endpoints: el objeto daily tiene claves
// dinámicas según modelo y miembro, así que se decodifica a crudo.
type dailyResponse struct {
	Daily map[string]json.RawMessage `json:"daily"`
}

type currentResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
	} `json:"current"`
}

// FetchSignals obtiene las señales de ensemble y multi-modelo para una
// ciudad y fecha. Devuelve las señales que sí respondieron junto con el
// error de la última fuente fallida, si lo hubo.
func (c *Client) FetchSignals(ctx context.Context, city domain.City, date time.Time) ([]domain.ForecastSignal, error) {
	horizon := horizonDays(date)
	var signals []domain.ForecastSignal
	var lastErr error

	members, err := c.fetchEnsemble(ctx, city, date)
	if err != nil {
		slog.Warn("openmeteo: ensemble fetch failed", "city", city.Name, "err", err)
		lastErr = err
	} else if len(members) > 0 {
		signals = append(signals, domain.ForecastSignal{
			Source:      "ecmwf_ensemble",
			Members:     members,
			HorizonDays: horizon,
		})
	}

	points, err := c.fetchMultiModel(ctx, city, date)
	if err != nil {
		slog.Warn("openmeteo: multi-model fetch failed", "city", city.Name, "err", err)
		lastErr = err
	}
	for model, temp := range points {
		signals = append(signals, domain.ForecastSignal{
			Source:        model,
			PointEstimate: temp,
			HorizonDays:   horizon,
		})
	}

	if len(signals) == 0 && lastErr != nil {
		return nil, fmt.Errorf("openmeteo.FetchSignals %s: %w", city.Name, lastErr)
	}
	return signals, lastErr
}

// CurrentTemp lee la temperatura observada actual en la unidad de la ciudad.
func (c *Client) CurrentTemp(ctx context.Context, city domain.City) (float64, error) {
	url := fmt.Sprintf("%s/v1/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m",
		c.forecastBase, city.Lat, city.Lon)

	var resp currentResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return 0, fmt.Errorf("openmeteo.CurrentTemp %s: %w", city.Name, err)
	}

	temp := resp.Current.Temperature
	if city.Unit == domain.Fahrenheit {
		temp = domain.CToF(temp)
	}
	return temp, nil
}

// fetchEnsemble obtiene las trayectorias de máxima diaria del ensemble.
// Las claves vienen como "temperature_2m_max_member01", etc.
func (c *Client) fetchEnsemble(ctx context.Context, city domain.City, date time.Time) ([]float64, error) {
	day := date.Format("2006-01-02")
	url := fmt.Sprintf(
		"%s/v1/ensemble?latitude=%.4f&longitude=%.4f&daily=temperature_2m_max&start_date=%s&end_date=%s&models=%s",
		c.ensembleBase, city.Lat, city.Lon, day, day, ensembleModel)

	var resp dailyResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return nil, err
	}

	var members []float64
	for key, raw := range resp.Daily {
		if !strings.HasPrefix(key, "temperature_2m_max") || key == "time" {
			continue
		}
		var vals []*float64
		if err := json.Unmarshal(raw, &vals); err != nil {
			continue
		}
		if len(vals) == 0 || vals[0] == nil {
			continue
		}
		members = append(members, c.toCityUnit(*vals[0], city.Unit))
	}

	slog.Debug("openmeteo: ensemble fetched",
		"city", city.Name, "date", day, "members", len(members))
	return members, nil
}

// fetchMultiModel obtiene la máxima diaria de los modelos deterministas
// en una sola llamada. Devuelve temperatura por modelo, ya con sesgo.
func (c *Client) fetchMultiModel(ctx context.Context, city domain.City, date time.Time) (map[string]float64, error) {
	day := date.Format("2006-01-02")
	url := fmt.Sprintf(
		"%s/v1/forecast?latitude=%.4f&longitude=%.4f&daily=temperature_2m_max&start_date=%s&end_date=%s&models=%s",
		c.forecastBase, city.Lat, city.Lon, day, day, strings.Join(pointModels, ","))

	var resp dailyResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(pointModels))
	for _, model := range pointModels {
		key := "temperature_2m_max_" + model
		raw, ok := resp.Daily[key]
		if !ok {
			// Con un solo modelo el API omite el sufijo.
			raw, ok = resp.Daily["temperature_2m_max"]
			if !ok {
				continue
			}
		}
		var vals []*float64
		if err := json.Unmarshal(raw, &vals); err != nil || len(vals) == 0 || vals[0] == nil {
			continue
		}
		out[model] = c.toCityUnit(*vals[0], city.Unit)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no model data in response")
	}
	return out, nil
}

// toCityUnit convierte de °C del API a la unidad de la ciudad y aplica
// la corrección de sesgo de estación.
func (c *Client) toCityUnit(tempC float64, unit domain.TempUnit) float64 {
	if unit == domain.Fahrenheit {
		return domain.CToF(tempC) + c.biasF
	}
	return tempC + c.biasC
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

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

// horizonDays devuelve la distancia en días al día objetivo, mínimo 0.
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
