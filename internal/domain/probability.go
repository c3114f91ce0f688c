package domain

import (
	"math"
)

// probEpsilon mantiene las probabilidades estrictamente dentro de (0,1).
// Una probabilidad exacta de 0 o 1 degenera el sizing de Kelly aguas abajo.
const probEpsilon = 1e-4

// Method identifica la estrategia usada para estimar una probabilidad.
type Method int

const (
	// MethodEnsemble cuenta miembros de ensemble dentro del bucket.
	MethodEnsemble Method = iota
	// MethodNormal ajusta una normal sobre las estimaciones puntuales.
	MethodNormal
)

func (m Method) String() string {
	if m == MethodEnsemble {
		return "ensemble"
	}
	return "normal"
}

// ModelConfig parametriza el modelo de probabilidad. Todos los valores
// vienen de configuración; los sesgos por fuente NUNCA van hardcodeados.
type ModelConfig struct {
	// MinEnsembleMembers es el mínimo de miembros (unión de todas las
	// señales) para usar votación de ensemble en vez del fallback normal.
	MinEnsembleMembers int
	// PrimarySource es la fuente cuya estimación puntual ancla el blend.
	PrimarySource string
	// PrimaryWeight y ConsensusWeight ponderan la fuente primaria y la
	// media entre fuentes en el blend del fallback. Se normalizan entre sí.
	PrimaryWeight   float64
	ConsensusWeight float64
	// SourceBias es la corrección aditiva por fuente, aplicada a las
	// estimaciones puntuales antes del blend. Default: 0 para todo.
	SourceBias map[string]float64
	// BaseSigmaF/C es el suelo de desviación estándar cuando las señales
	// no traen dispersión propia. SigmaPerDayF/C crece con el horizonte.
	BaseSigmaF   float64
	BaseSigmaC   float64
	SigmaPerDayF float64
	SigmaPerDayC float64
}

// Model convierte señales de pronóstico en probabilidades por bucket.
type Model struct {
	cfg ModelConfig
}

// NewModel crea un Model con la configuración dada.
func NewModel(cfg ModelConfig) *Model {
	if cfg.MinEnsembleMembers <= 0 {
		cfg.MinEnsembleMembers = 20
	}
	if cfg.PrimaryWeight <= 0 && cfg.ConsensusWeight <= 0 {
		cfg.PrimaryWeight = 0.6
		cfg.ConsensusWeight = 0.4
	}
	if cfg.BaseSigmaF <= 0 {
		cfg.BaseSigmaF = 2.5
	}
	if cfg.BaseSigmaC <= 0 {
		cfg.BaseSigmaC = 1.5
	}
	if cfg.SigmaPerDayF <= 0 {
		cfg.SigmaPerDayF = 1.0
	}
	if cfg.SigmaPerDayC <= 0 {
		cfg.SigmaPerDayC = 0.5
	}
	return &Model{cfg: cfg}
}

// ChooseMethod decide la estrategia por cardinalidad de los miembros.
// Es un predicado puro: mismo input, misma estrategia, sin inspección de tipos.
func (m *Model) ChooseMethod(signals []ForecastSignal) Method {
	total := 0
	for _, s := range signals {
		total += len(s.Members)
	}
	if total >= m.cfg.MinEnsembleMembers {
		return MethodEnsemble
	}
	return MethodNormal
}

// EstimateAll calcula la probabilidad de cada bucket del mercado.
// Las probabilidades se renormalizan para sumar 1 sobre la partición y
// después se recortan a [ε, 1-ε]. Devuelve también el método empleado.
func (m *Model) EstimateAll(market Market, signals []ForecastSignal) (map[string]float64, Method) {
	probs := make(map[string]float64, len(market.Buckets))
	method := m.ChooseMethod(signals)

	switch method {
	case MethodEnsemble:
		members := collectMembers(signals)
		for _, b := range market.Buckets {
			probs[b.Label] = ensembleVote(b, members)
		}
	case MethodNormal:
		mean, sigma := m.fitNormal(market.Unit, signals)
		if sigma <= 0 {
			return probs, method
		}
		for _, b := range market.Buckets {
			probs[b.Label] = normalBucketProb(b, mean, sigma)
		}
	}

	normalize(probs)
	for label, p := range probs {
		probs[label] = ClampProbability(p)
	}
	return probs, method
}

// Estimate calcula la probabilidad de un único bucket.
// Para mercados completos conviene EstimateAll, que renormaliza la partición.
func (m *Model) Estimate(bucket Bucket, unit TempUnit, signals []ForecastSignal) (float64, Method) {
	method := m.ChooseMethod(signals)
	var p float64
	switch method {
	case MethodEnsemble:
		p = ensembleVote(bucket, collectMembers(signals))
	case MethodNormal:
		mean, sigma := m.fitNormal(unit, signals)
		if sigma <= 0 {
			return ClampProbability(0), method
		}
		p = normalBucketProb(bucket, mean, sigma)
	}
	return ClampProbability(p), method
}

// BlendedPointEstimate devuelve la temperatura "center of mass" del blend,
// con sesgos aplicados. El evaluador la usa para el buffer de proximidad.
func (m *Model) BlendedPointEstimate(signals []ForecastSignal) (float64, bool) {
	points := m.biasedPoints(signals)
	if len(points) == 0 {
		return 0, false
	}
	primary, haveP := m.primaryPoint(signals)
	consensus := mean(points)
	if !haveP {
		return consensus, true
	}
	wp, wc := m.weights()
	return wp*primary + wc*consensus, true
}

// ClampProbability recorta una probabilidad al intervalo abierto (0,1).
func ClampProbability(p float64) float64 {
	if p < probEpsilon {
		return probEpsilon
	}
	if p > 1-probEpsilon {
		return 1 - probEpsilon
	}
	return p
}

// --- votación de ensemble ---

// collectMembers une los miembros de todas las señales en un solo slice.
func collectMembers(signals []ForecastSignal) []float64 {
	var members []float64
	for _, s := range signals {
		members = append(members, s.Members...)
	}
	return members
}

// ensembleVote cuenta qué fracción de miembros cae dentro del bucket.
// No asume ninguna forma de distribución: captura sesgo y multimodalidad
// del sistema de ensemble tal cual.
func ensembleVote(bucket Bucket, members []float64) float64 {
	if len(members) == 0 {
		return 0
	}
	inside := 0
	for _, t := range members {
		if bucket.Contains(t) {
			inside++
		}
	}
	return float64(inside) / float64(len(members))
}

// --- fallback paramétrico ---

// fitNormal ajusta media y sigma sobre las estimaciones puntuales.
// La media es un blend ponderado de la fuente primaria y el consenso.
// Sigma sale de la dispersión declarada por las señales si existe; si no,
// del spread entre fuentes, con un suelo por unidad y crecimiento por día
// de horizonte (pronósticos más lejanos son más inciertos).
func (m *Model) fitNormal(unit TempUnit, signals []ForecastSignal) (float64, float64) {
	points := m.biasedPoints(signals)
	if len(points) == 0 {
		return 0, 0
	}

	blended, _ := m.BlendedPointEstimate(signals)

	baseSigma, perDay := m.cfg.BaseSigmaC, m.cfg.SigmaPerDayC
	if unit == Fahrenheit {
		baseSigma, perDay = m.cfg.BaseSigmaF, m.cfg.SigmaPerDayF
	}

	sigma := maxDeclaredDispersion(signals)
	if sigma <= 0 {
		spread := spreadOf(points)
		sigma = math.Max(spread*0.8, baseSigma)
	}
	sigma += float64(maxHorizon(signals)) * perDay

	return blended, sigma
}

// normalBucketProb integra la normal sobre el rango del bucket, con la
// misma corrección de continuidad de ±0.5 que Bucket.Contains.
func normalBucketProb(b Bucket, mean, sigma float64) float64 {
	switch {
	case math.IsInf(b.MaxTemp, 1):
		return 1 - normalCDF(b.MinTemp-0.5, mean, sigma)
	case math.IsInf(b.MinTemp, -1):
		return normalCDF(b.MaxTemp+0.5, mean, sigma)
	default:
		return normalCDF(b.MaxTemp+0.5, mean, sigma) - normalCDF(b.MinTemp-0.5, mean, sigma)
	}
}

// normalCDF es la función de distribución acumulada de N(mean, sigma).
func normalCDF(x, mean, sigma float64) float64 {
	return 0.5 * (1 + math.Erf((x-mean)/(sigma*math.Sqrt2)))
}

// --- helpers ---

// biasedPoints recoge las estimaciones puntuales con sesgo aplicado.
// Las señales que solo aportan miembros de ensemble no entran al blend.
func (m *Model) biasedPoints(signals []ForecastSignal) []float64 {
	points := make([]float64, 0, len(signals))
	for _, s := range signals {
		if s.HasMembers() && s.PointEstimate == 0 {
			continue
		}
		points = append(points, s.PointEstimate+m.cfg.SourceBias[s.Source])
	}
	return points
}

func (m *Model) primaryPoint(signals []ForecastSignal) (float64, bool) {
	for _, s := range signals {
		if s.Source == m.cfg.PrimarySource {
			return s.PointEstimate + m.cfg.SourceBias[s.Source], true
		}
	}
	return 0, false
}

func (m *Model) weights() (wp, wc float64) {
	total := m.cfg.PrimaryWeight + m.cfg.ConsensusWeight
	if total <= 0 {
		return 0.5, 0.5
	}
	return m.cfg.PrimaryWeight / total, m.cfg.ConsensusWeight / total
}

func maxDeclaredDispersion(signals []ForecastSignal) float64 {
	d := 0.0
	for _, s := range signals {
		if s.Dispersion > d {
			d = s.Dispersion
		}
	}
	return d
}

func maxHorizon(signals []ForecastSignal) int {
	h := 0
	for _, s := range signals {
		if s.HorizonDays > h {
			h = s.HorizonDays
		}
	}
	return h
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func spreadOf(xs []float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return hi - lo
}

// normalize reescala las probabilidades para que sumen 1 si se desvían.
// La integral sobre una partición completa debería sumar 1; pequeñas
// derivas vienen del clamping y de colas fuera de los buckets abiertos.
func normalize(probs map[string]float64) {
	total := 0.0
	for _, p := range probs {
		total += p
	}
	if total <= 0 || math.Abs(total-1) < 0.001 {
		return
	}
	for label, p := range probs {
		probs[label] = p / total
	}
}
