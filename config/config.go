package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Sources  SourcesConfig  `yaml:"sources"`
	Cities   CitiesConfig   `yaml:"cities"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
}

// StrategyConfig controla la política de trading.
type StrategyConfig struct {
	IntervalSeconds  int     `yaml:"interval_seconds"`
	MinEdge          float64 `yaml:"min_edge"`
	MinMarketPrice   float64 `yaml:"min_market_price"`
	ExecFraction     float64 `yaml:"exec_fraction"` // fracción del fair value para el precio límite
	KellyFraction    float64 `yaml:"kelly_fraction"`
	Bankroll         float64 `yaml:"bankroll"`      // input de la fórmula Kelly, NO el techo de exposición
	MaxPerBucket     float64 `yaml:"max_per_bucket"`
	MaxExposure      float64 `yaml:"max_exposure"`
	MinShares        float64 `yaml:"min_shares"`
	MinStake         float64 `yaml:"min_stake"`
	ForecastBufferF  float64 `yaml:"forecast_buffer_f"` // grados de margen al borde del bucket
	ForecastBufferC  float64 `yaml:"forecast_buffer_c"`
	LedgerLookbackHr int     `yaml:"ledger_lookback_hours"`
}

// SourcesConfig controla el modelo de probabilidad y las fuentes.
type SourcesConfig struct {
	MinEnsembleMembers int     `yaml:"min_ensemble_members"` // umbral para preferir el voto de ensemble
	PrimarySource      string  `yaml:"primary_source"`
	PrimaryWeight      float64 `yaml:"primary_weight"`
	ConsensusWeight    float64 `yaml:"consensus_weight"`
	// SourceBias corrige cada fuente por nombre, en grados de la unidad
	// de la ciudad. Positivo = la fuente pronostica de menos.
	SourceBias map[string]float64 `yaml:"source_bias"`
	// StationBiasF/C corrigen la diferencia grid-vs-estación de Open-Meteo
	// frente a las estaciones que resuelven los mercados.
	StationBiasF float64 `yaml:"station_bias_f"`
	StationBiasC float64 `yaml:"station_bias_c"`
}

// CitiesConfig lista las ciudades a escanear por nombre del catálogo.
type CitiesConfig struct {
	US   []string `yaml:"us"`
	Intl []string `yaml:"intl"`
}

// APIConfig contiene los base URLs y la clave de firma.
type APIConfig struct {
	CLOBBase      string `yaml:"clob_base"`
	GammaBase     string `yaml:"gamma_base"`
	OpenMeteoBase string `yaml:"openmeteo_base"`
	EnsembleBase  string `yaml:"ensemble_base"`
	NOAABase      string `yaml:"noaa_base"`
	PrivateKey    string `yaml:"-"` // solo vía POLYGON_PRIVATE_KEY, nunca en YAML
}

// StorageConfig controla dónde se persiste el registro de posiciones.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// TelegramConfig habilita notificaciones por Telegram.
type TelegramConfig struct {
	BotToken string `yaml:"-"` // TELEGRAM_BOT_TOKEN
	ChatID   string `yaml:"-"` // TELEGRAM_CHAT_ID
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben el YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ScanInterval devuelve el intervalo entre ciclos como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Strategy.IntervalSeconds) * time.Second
}

// LedgerLookback devuelve la ventana activa del ledger.
func (c *Config) LedgerLookback() time.Duration {
	return time.Duration(c.Strategy.LedgerLookbackHr) * time.Hour
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYGON_PRIVATE_KEY"); v != "" {
		cfg.API.PrivateKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("WEATHERBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Strategy.IntervalSeconds <= 0 {
		cfg.Strategy.IntervalSeconds = 1800
	}
	if cfg.Strategy.MinEdge <= 0 {
		cfg.Strategy.MinEdge = 0.15
	}
	if cfg.Strategy.MinMarketPrice <= 0 {
		cfg.Strategy.MinMarketPrice = 0.02
	}
	if cfg.Strategy.ExecFraction <= 0 {
		cfg.Strategy.ExecFraction = 0.85
	}
	if cfg.Strategy.KellyFraction <= 0 {
		cfg.Strategy.KellyFraction = 0.25
	}
	if cfg.Strategy.Bankroll <= 0 {
		cfg.Strategy.Bankroll = 100
	}
	if cfg.Strategy.MaxPerBucket <= 0 {
		cfg.Strategy.MaxPerBucket = 10
	}
	if cfg.Strategy.MaxExposure <= 0 {
		cfg.Strategy.MaxExposure = 50
	}
	if cfg.Strategy.MinShares <= 0 {
		cfg.Strategy.MinShares = 5
	}
	if cfg.Strategy.MinStake <= 0 {
		cfg.Strategy.MinStake = 0.50
	}
	if cfg.Strategy.ForecastBufferF <= 0 {
		cfg.Strategy.ForecastBufferF = 3.0
	}
	if cfg.Strategy.ForecastBufferC <= 0 {
		cfg.Strategy.ForecastBufferC = 2.0
	}
	if cfg.Strategy.LedgerLookbackHr <= 0 {
		cfg.Strategy.LedgerLookbackHr = 48
	}
	if cfg.Sources.MinEnsembleMembers <= 0 {
		cfg.Sources.MinEnsembleMembers = 20
	}
	if cfg.Sources.PrimarySource == "" {
		cfg.Sources.PrimarySource = "noaa"
	}
	if cfg.Sources.PrimaryWeight <= 0 {
		cfg.Sources.PrimaryWeight = 0.6
	}
	if cfg.Sources.ConsensusWeight <= 0 {
		cfg.Sources.ConsensusWeight = 0.4
	}
	if cfg.Sources.StationBiasF == 0 {
		cfg.Sources.StationBiasF = 1.0
	}
	if cfg.Sources.StationBiasC == 0 {
		cfg.Sources.StationBiasC = 0.5
	}
	if len(cfg.Cities.US) == 0 {
		cfg.Cities.US = []string{"nyc", "chicago", "miami", "atlanta", "seattle", "dallas"}
	}
	if len(cfg.Cities.Intl) == 0 {
		cfg.Cities.Intl = []string{"london", "seoul", "paris", "toronto"}
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "weatherbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
