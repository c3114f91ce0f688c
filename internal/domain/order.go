package domain

// OrderRequest es una orden límite BUY YES lista para firmar y enviar.
type OrderRequest struct {
	TokenID     string
	MarketSlug  string
	BucketLabel string
	Price       float64 // precio límite en USDC, ya redondeado a céntimos
	Shares      float64
	NegRisk     bool
}

// Cost devuelve el coste máximo de la orden en USDC.
func (r OrderRequest) Cost() float64 {
	return r.Price * r.Shares
}

// PlacedOrder es la respuesta del CLOB a una orden aceptada.
type PlacedOrder struct {
	OrderID string
	Status  string // "matched", "live", "delayed"
}
