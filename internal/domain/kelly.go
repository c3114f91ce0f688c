package domain

import "math"

// ExecutionPrice calcula el precio límite efectivo de una orden BUY.
// Apostamos a ser makers: el límite se pone a una fracción del fair value
// (nuestra probabilidad) y se redondea a céntimos. Si ese límite cruza la
// cotización actual, la orden ejecuta al precio de mercado, así que el
// precio efectivo es el mínimo de ambos. El resultado queda en [0.01, 0.95].
func ExecutionPrice(probability, fraction, marketPrice float64) float64 {
	limit := math.Round(probability*fraction*100) / 100
	price := math.Min(limit, marketPrice)
	if price < 0.01 {
		price = 0.01
	}
	if price > 0.95 {
		price = 0.95
	}
	return price
}

// KellyStake calcula el stake en USDC por el criterio de Kelly binario:
//
//	f* = edge / (1 - price)
//	stake = f* × kellyFraction × bankroll
//
// kellyFraction < 1 (p.ej. quarter-Kelly) reduce la varianza frente al
// Kelly completo. bankroll es capital utilizable real: NO es el techo de
// exposición, que se aplica aparte en el sizer.
func KellyStake(edge, price, kellyFraction, bankroll float64) float64 {
	if edge <= 0 || bankroll <= 0 || kellyFraction <= 0 {
		return 0
	}
	if price >= 0.99 {
		// mercados casi resueltos: el denominador explota, no hay apuesta sensata
		return 0
	}
	f := edge / (1 - price)
	return f * kellyFraction * bankroll
}

// SharesFor convierte un stake en número de shares al precio dado,
// truncado a 2 decimales como exige el CLOB.
func SharesFor(stake, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return math.Floor(stake/price*100) / 100
}
