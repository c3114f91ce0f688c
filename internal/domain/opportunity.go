package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marca inputs fuera de rango: la Opportunity se descarta
// y el ciclo sigue con el resto de buckets.
var ErrInvalidInput = errors.New("invalid opportunity input")

// Opportunity es una unidad de decisión candidata: un bucket de un mercado
// con nuestra probabilidad frente al precio cotizado. Derivada en cada
// ciclo, nunca persistida; o se convierte en orden o se descarta.
type Opportunity struct {
	MarketSlug  string
	BucketLabel string
	TokenID     string
	Question    string
	City        string
	NegRisk     bool

	Probability float64 // nuestra estimación, en (0,1)
	MarketPrice float64 // precio YES cotizado, en (0,1)
	ExecPrice   float64 // precio efectivo al que ejecutaría la orden
	Edge        float64 // Probability - ExecPrice, el edge al precio real de ejecución
	Method      Method
}

// PositionKey identifica mercado+bucket para dedup y exposición.
func PositionKey(marketSlug, bucketLabel string) string {
	return marketSlug + "|" + bucketLabel
}

// Key devuelve la position key de esta oportunidad.
func (o Opportunity) Key() string {
	return PositionKey(o.MarketSlug, o.BucketLabel)
}

// ValidateInputs comprueba que probabilidad y precio están estrictamente
// dentro de (0,1). Un valor en el borde o fuera es fallo duro de input.
func ValidateInputs(probability, marketPrice float64) error {
	if probability <= 0 || probability >= 1 {
		return fmt.Errorf("%w: probability %.4f outside (0,1)", ErrInvalidInput, probability)
	}
	if marketPrice <= 0 || marketPrice >= 1 {
		return fmt.Errorf("%w: market price %.4f outside (0,1)", ErrInvalidInput, marketPrice)
	}
	return nil
}
