package domain

// TempUnit es la unidad de temperatura de un mercado o pronóstico.
type TempUnit int

const (
	Fahrenheit TempUnit = iota
	Celsius
)

// Symbol devuelve el sufijo de la unidad tal como aparece en los mercados.
func (u TempUnit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// CToF convierte grados Celsius a Fahrenheit.
func CToF(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// FToC convierte grados Fahrenheit a Celsius.
func FToC(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}

// City es una ciudad con mercados de temperatura en Polymarket.
type City struct {
	Name string // nombre en slugs de mercado: "nyc", "london", ...
	Lat  float64
	Lon  float64
	Unit TempUnit
}

// ForecastSignal es la estimación de UNA fuente para la temperatura máxima
// de una ciudad en una fecha. Inmutable una vez obtenida; vive solo durante
// el ciclo que la pidió.
type ForecastSignal struct {
	// Source identifica la fuente ("noaa", "gfs_seamless", "ecmwf_ensemble", ...).
	// La corrección de sesgo configurada se aplica por este nombre.
	Source string
	// PointEstimate es la temperatura máxima pronosticada, en la unidad de la ciudad.
	PointEstimate float64
	// Dispersion es la desviación estándar estimada del pronóstico.
	// 0 significa "desconocida": el modelo la deriva del spread entre fuentes.
	Dispersion float64
	// Members son las trayectorias del sistema de ensemble, si la fuente
	// las ofrece. Vacío para fuentes puntuales.
	Members []float64
	// HorizonDays es la distancia al día objetivo: 0 = hoy, 1 = mañana.
	HorizonDays int
}

// HasMembers devuelve true si la señal aporta miembros de ensemble.
func (s ForecastSignal) HasMembers() bool {
	return len(s.Members) > 0
}

// ReviseWithObservation corrige las señales del día con la temperatura ya
// observada: una máxima que ya ocurrió no puede deshacerse. Los puntos por
// debajo de la observación suben hasta ella y su dispersión declarada se
// reduce a la mitad; los miembros de ensemble por debajo también se elevan.
// Las señales quedan sin tocar si la observación no supera su estimación.
func ReviseWithObservation(signals []ForecastSignal, observed float64) []ForecastSignal {
	out := make([]ForecastSignal, len(signals))
	for i, s := range signals {
		// Las señales solo-ensemble usan PointEstimate == 0 como centinela;
		// elevarlo las convertiría en señales puntuales.
		ensembleOnly := s.HasMembers() && s.PointEstimate == 0
		if !ensembleOnly && s.PointEstimate < observed {
			s.PointEstimate = observed
			s.Dispersion = s.Dispersion / 2
		}
		if s.HasMembers() {
			members := make([]float64, len(s.Members))
			for j, m := range s.Members {
				if m < observed {
					m = observed
				}
				members[j] = m
			}
			s.Members = members
		}
		out[i] = s
	}
	return out
}
