package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

const gammaEventsPath = "/events"

// DiscoverMarkets busca los eventos de temperatura para las ciudades y
// fechas dadas probando los slugs conocidos. Un slug sin evento no es
// error, simplemente no hay mercado todavía.
func (c *Client) DiscoverMarkets(ctx context.Context, cities []domain.City, dates []time.Time) ([]domain.Market, error) {
	var markets []domain.Market
	seen := make(map[string]bool)

	for _, city := range cities {
		for _, date := range dates {
			slug := WeatherSlug(city.Name, date)

			event, ok, err := c.fetchEvent(ctx, slug)
			if err != nil {
				slog.Warn("gamma: fetch event failed", "slug", slug, "err", err)
				continue
			}
			if !ok || event.Closed {
				continue
			}

			market, ok := parseWeatherEvent(event, city, date)
			if !ok || seen[market.Slug] {
				continue
			}
			seen[market.Slug] = true
			markets = append(markets, market)
			slog.Info("gamma: found weather market",
				"slug", market.Slug, "buckets", len(market.Buckets))
		}
	}

	slog.Debug("gamma: discovery complete", "markets", len(markets))
	return markets, nil
}

// CheckResolution consulta el estado de resolución de un evento. Un evento
// cerrado resuelve al bucket cuyo precio YES quedó en 1.
func (c *Client) CheckResolution(ctx context.Context, slug string) (domain.Resolution, error) {
	event, ok, err := c.fetchEvent(ctx, slug)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("gamma.CheckResolution %s: %w", slug, err)
	}
	if !ok {
		return domain.Resolution{}, fmt.Errorf("gamma.CheckResolution %s: event not found", slug)
	}
	if !event.Closed {
		return domain.Resolution{}, nil
	}

	// La unidad por defecto sale de la ciudad del slug, por si la question
	// del bucket ganador no la trae explícita.
	unit := domain.Fahrenheit
	if city, ok := domain.LookupCity(citySlugOf(slug)); ok {
		unit = city.Unit
	}

	res := domain.Resolution{Resolved: true}
	for _, gm := range event.Markets {
		prices := parseJSONFloats(gm.OutcomePrices)
		if len(prices) == 0 || prices[0] < 0.99 {
			continue
		}
		if _, _, label, ok := ParseBucket(gm.Question, unit); ok {
			res.WinningLabel = label
			break
		}
	}
	return res, nil
}

// citySlugOf extrae la ciudad de un slug de evento de temperatura.
func citySlugOf(slug string) string {
	rest, ok := strings.CutPrefix(slug, "highest-temperature-in-")
	if !ok {
		return ""
	}
	city, _, ok := strings.Cut(rest, "-on-")
	if !ok {
		return ""
	}
	return city
}

// fetchEvent obtiene un evento por slug. ok == false si no existe.
func (c *Client) fetchEvent(ctx context.Context, slug string) (gammaEvent, bool, error) {
	url := fmt.Sprintf("%s%s?slug=%s", c.gammaBase, gammaEventsPath, slug)

	var events []gammaEvent
	if err := c.get(ctx, c.gammaLimiter, url, &events); err != nil {
		return gammaEvent{}, false, err
	}
	if len(events) == 0 {
		return gammaEvent{}, false, nil
	}
	return events[0], true, nil
}

// parseWeatherEvent convierte un evento de Gamma en un Market del dominio.
// La unidad viene del catálogo de ciudades, no del texto: es más fiable.
func parseWeatherEvent(event gammaEvent, city domain.City, date time.Time) (domain.Market, bool) {
	if len(event.Markets) == 0 {
		return domain.Market{}, false
	}

	var buckets []domain.Bucket
	for _, gm := range event.Markets {
		tokens := parseJSONStrings(gm.ClobTokenIDs)
		if len(tokens) == 0 {
			continue
		}

		min, max, label, ok := ParseBucket(gm.Question, city.Unit)
		if !ok {
			slog.Debug("gamma: unparseable bucket question", "question", gm.Question)
			continue
		}

		prices := parseJSONFloats(gm.OutcomePrices)
		var yesPrice float64
		if len(prices) > 0 {
			yesPrice = prices[0]
		}

		buckets = append(buckets, domain.Bucket{
			TokenID:  tokens[0], // el primer token es el YES
			Label:    label,
			MinTemp:  min,
			MaxTemp:  max,
			YesPrice: yesPrice,
		})
	}

	if len(buckets) == 0 {
		return domain.Market{}, false
	}

	negRisk := event.Markets[0].NegRisk

	return domain.Market{
		Slug:     event.Slug,
		Question: event.Title,
		City:     city.Name,
		Date:     date.Format("2006-01-02"),
		Unit:     city.Unit,
		NegRisk:  negRisk,
		Buckets:  buckets,
	}, true
}

// parseJSONStrings decodifica un campo tipo `"[\"123\", \"456\"]"`.
func parseJSONStrings(raw string) []string {
	var out []string
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// parseJSONFloats decodifica un campo tipo `"[\"0.31\", \"0.69\"]"`.
func parseJSONFloats(raw string) []float64 {
	strs := parseJSONStrings(raw)
	out := make([]float64, 0, len(strs))
	for _, s := range strs {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}
