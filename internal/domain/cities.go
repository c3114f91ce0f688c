package domain

import "strings"

// Catálogo de ciudades con mercados de temperatura en Polymarket. Las
// coordenadas alimentan las consultas de forecast; la unidad determina
// el parsing de buckets y los buffers de proximidad.
var usCities = map[string]City{
	"nyc":     {Name: "nyc", Lat: 40.7128, Lon: -74.0060, Unit: Fahrenheit},
	"chicago": {Name: "chicago", Lat: 41.8781, Lon: -87.6298, Unit: Fahrenheit},
	"miami":   {Name: "miami", Lat: 25.7617, Lon: -80.1918, Unit: Fahrenheit},
	"atlanta": {Name: "atlanta", Lat: 33.7490, Lon: -84.3880, Unit: Fahrenheit},
	"seattle": {Name: "seattle", Lat: 47.6062, Lon: -122.3321, Unit: Fahrenheit},
	"dallas":  {Name: "dallas", Lat: 32.7767, Lon: -96.7970, Unit: Fahrenheit},
}

var intlCities = map[string]City{
	"london":  {Name: "london", Lat: 51.5074, Lon: -0.1278, Unit: Celsius},
	"seoul":   {Name: "seoul", Lat: 37.5665, Lon: 126.9780, Unit: Celsius},
	"paris":   {Name: "paris", Lat: 48.8566, Lon: 2.3522, Unit: Celsius},
	"toronto": {Name: "toronto", Lat: 43.6532, Lon: -79.3832, Unit: Celsius},
}

// LookupCity devuelve la definición de una ciudad por nombre, o false si
// no está en el catálogo. "new york" se acepta como alias de nyc.
func LookupCity(name string) (City, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "new york" {
		key = "nyc"
	}
	if c, ok := usCities[key]; ok {
		return c, true
	}
	c, ok := intlCities[key]
	return c, ok
}

// Cities resuelve listas de nombres de config a definiciones. Nombres
// desconocidos se ignoran y se devuelven aparte para poder avisar.
func Cities(us, intl []string) (cities []City, unknown []string) {
	for _, name := range us {
		if c, ok := LookupCity(name); ok && c.Unit == Fahrenheit {
			cities = append(cities, c)
		} else {
			unknown = append(unknown, name)
		}
	}
	for _, name := range intl {
		if c, ok := LookupCity(name); ok && c.Unit == Celsius {
			cities = append(cities, c)
		} else {
			unknown = append(unknown, name)
		}
	}
	return cities, unknown
}
