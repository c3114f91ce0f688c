package polymarket

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
)

// WeatherSlug genera el slug del evento de Gamma para una ciudad y fecha.
// Polymarket usa el patrón "highest-temperature-in-{city}-on-{month}-{day}-{year}"
// con el mes en inglés en minúsculas.
func WeatherSlug(city string, date time.Time) string {
	month := strings.ToLower(date.Month().String())
	return fmt.Sprintf("highest-temperature-in-%s-on-%s-%d-%d",
		city, month, date.Day(), date.Year())
}

// ParseBucket extrae el rango de temperatura de la question de un mercado.
// Formatos reales: "38-39°F", "52°F or higher", "37°F or lower", "9°C".
// Devuelve false si la question no contiene un bucket reconocible.
func ParseBucket(question string, defaultUnit domain.TempUnit) (min, max float64, label string, ok bool) {
	q := strings.TrimSpace(question)

	unit := defaultUnit
	switch {
	case strings.Contains(q, "°F") || strings.Contains(q, "Fahrenheit"):
		unit = domain.Fahrenheit
	case strings.Contains(q, "°C") || strings.Contains(q, "Celsius"):
		unit = domain.Celsius
	}
	symbol := unit.Symbol()

	if lo, hi, found := extractRange(q); found {
		return lo, hi, fmt.Sprintf("%d-%d%s", int(lo), int(hi), symbol), true
	}

	lower := strings.ToLower(q)
	if strings.Contains(lower, "or higher") || strings.Contains(lower, "or more") || strings.Contains(lower, "or above") {
		if t, found := extractSingleTemp(q); found {
			return t, math.Inf(1), fmt.Sprintf("%d%s or higher", int(t), symbol), true
		}
	}
	if strings.Contains(lower, "or lower") || strings.Contains(lower, "or less") || strings.Contains(lower, "or below") {
		if t, found := extractSingleTemp(q); found {
			return math.Inf(-1), t, fmt.Sprintf("%d%s or lower", int(t), symbol), true
		}
	}

	// Bucket de un solo grado: "9°C" equivale a [9, 9].
	if t, found := extractSingleTemp(q); found {
		return t, t, fmt.Sprintf("%d%s", int(t), symbol), true
	}

	return 0, 0, "", false
}

// extractRange busca un rango tipo "38-39" en el texto. El en dash se
// normaliza a guion antes de buscar.
func extractRange(text string) (min, max float64, ok bool) {
	normalized := strings.ReplaceAll(text, "–", "-")
	for _, word := range strings.Fields(normalized) {
		clean := cleanTempWord(word)
		dash := strings.Index(clean, "-")
		// dash == 0 sería un signo negativo, no un rango
		if dash <= 0 {
			continue
		}
		lo, errLo := strconv.ParseFloat(clean[:dash], 64)
		hi, errHi := strconv.ParseFloat(clean[dash+1:], 64)
		if errLo == nil && errHi == nil {
			return lo, hi, true
		}
	}
	return 0, 0, false
}

// extractSingleTemp busca el primer número que parece una temperatura.
func extractSingleTemp(text string) (float64, bool) {
	for _, word := range strings.Fields(text) {
		clean := cleanTempWord(word)
		t, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			continue
		}
		if t > -60 && t < 150 {
			return t, true
		}
	}
	return 0, false
}

func cleanTempWord(word string) string {
	r := strings.NewReplacer("°F", "", "°C", "", ",", "", "(", "", ")", "", "?", "")
	return r.Replace(word)
}
