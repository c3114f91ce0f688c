package polymarket

// Tipos wire del API de Gamma. Los campos numéricos vienen como strings
// JSON-encoded dentro de strings, tal cual los devuelve el API.

type gammaEvent struct {
	Title   string        `json:"title"`
	Slug    string        `json:"slug"`
	Closed  bool          `json:"closed"`
	Markets []gammaMarket `json:"markets"`
}

type gammaMarket struct {
	ConditionID   string `json:"conditionId"`
	Question      string `json:"question"`
	Closed        bool   `json:"closed"`
	NegRisk       bool   `json:"negRisk"`
	ClobTokenIDs  string `json:"clobTokenIds"`  // JSON array como string
	OutcomePrices string `json:"outcomePrices"` // JSON array como string
	Outcomes      string `json:"outcomes"`      // JSON array como string
}
