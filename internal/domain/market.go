package domain

import (
	"fmt"
	"math"
)

// Market representa un mercado de temperatura en Polymarket: un evento
// "highest temperature in X on DATE" con un bucket por resultado posible.
type Market struct {
	Slug     string // identificador estable del evento
	Question string
	City     string // nombre en minúsculas: "nyc", "london", ...
	Date     string // YYYY-MM-DD del día que resuelve
	Unit     TempUnit
	NegRisk  bool
	Buckets  []Bucket
}

// Bucket es una partición del rango de temperaturas: [MinTemp, MaxTemp] en
// grados enteros, o abierto por un extremo (±Inf) para "or higher"/"or lower".
type Bucket struct {
	TokenID  string
	Label    string
	MinTemp  float64 // -Inf para "X or lower"
	MaxTemp  float64 // +Inf para "X or higher"
	YesPrice float64 // último precio YES cotizado, en (0,1)
}

// Resolution es el estado de resolución de un mercado según el exchange.
type Resolution struct {
	Resolved     bool
	WinningLabel string // vacío si Resolved == false o el outcome no se pudo leer
}

// Validate comprueba que los límites del bucket son coherentes.
// Un bucket malformado es un fallo de validación de input, no una oportunidad.
func (b Bucket) Validate() error {
	if math.IsNaN(b.MinTemp) || math.IsNaN(b.MaxTemp) {
		return fmt.Errorf("bucket %q: NaN bound", b.Label)
	}
	if b.MinTemp > b.MaxTemp {
		return fmt.Errorf("bucket %q: min %.1f > max %.1f", b.Label, b.MinTemp, b.MaxTemp)
	}
	if math.IsInf(b.MinTemp, 1) || math.IsInf(b.MaxTemp, -1) {
		return fmt.Errorf("bucket %q: inverted open bound", b.Label)
	}
	return nil
}

// Contains devuelve true si una temperatura cae dentro del bucket.
// Los buckets están etiquetados en grados enteros ("38-39°F"), así que se
// aplica la corrección de continuidad de ±0.5: el bucket cubre
// [min-0.5, max+0.5). Con esto los buckets de un mercado particionan la
// recta real sin huecos ni solapes.
func (b Bucket) Contains(temp float64) bool {
	lower := b.MinTemp - 0.5
	upper := b.MaxTemp + 0.5
	if math.IsInf(b.MinTemp, -1) {
		return temp < upper
	}
	if math.IsInf(b.MaxTemp, 1) {
		return temp >= lower
	}
	return temp >= lower && temp < upper
}

// DistanceToBoundary devuelve la distancia mínima entre una temperatura y
// los límites finitos del bucket. Para buckets abiertos solo cuenta el
// límite finito. Se usa en el buffer de proximidad del evaluador.
func (b Bucket) DistanceToBoundary(temp float64) float64 {
	d := math.Inf(1)
	if !math.IsInf(b.MinTemp, -1) {
		d = math.Min(d, math.Abs(temp-(b.MinTemp-0.5)))
	}
	if !math.IsInf(b.MaxTemp, 1) {
		d = math.Min(d, math.Abs(temp-(b.MaxTemp+0.5)))
	}
	return d
}
