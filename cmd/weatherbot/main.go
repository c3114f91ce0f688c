package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/weatherbot/config"
	"github.com/alejandrodnm/weatherbot/internal/adapters/forecast"
	"github.com/alejandrodnm/weatherbot/internal/adapters/noaa"
	"github.com/alejandrodnm/weatherbot/internal/adapters/notify"
	"github.com/alejandrodnm/weatherbot/internal/adapters/openmeteo"
	"github.com/alejandrodnm/weatherbot/internal/adapters/polymarket"
	"github.com/alejandrodnm/weatherbot/internal/adapters/storage"
	"github.com/alejandrodnm/weatherbot/internal/domain"
	"github.com/alejandrodnm/weatherbot/internal/engine"
	"github.com/alejandrodnm/weatherbot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	dryRun := flag.Bool("dry-run", false, "evaluate and log but never send orders")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	positions := flag.Bool("positions", false, "print the position log and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open position store", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *positions {
		printPositions(ctx, store)
		return
	}

	cities, unknown := domain.Cities(cfg.Cities.US, cfg.Cities.Intl)
	for _, name := range unknown {
		slog.Warn("city not in catalogue, skipping", "name", name)
	}
	if len(cities) == 0 {
		slog.Error("no valid cities configured")
		os.Exit(1)
	}

	slog.Info("weatherbot starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"dry_run", *dryRun,
		"once", *once,
		"cities", len(cities),
	)

	gamma := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)

	var executor ports.OrderExecutor
	if !*dryRun {
		if cfg.API.PrivateKey == "" {
			slog.Error("POLYGON_PRIVATE_KEY is required for live trading (or pass --dry-run)")
			os.Exit(1)
		}
		auth, err := polymarket.NewAuthClient(cfg.API.CLOBBase, cfg.API.GammaBase, cfg.API.PrivateKey)
		if err != nil {
			slog.Error("failed to create trading client", "err", err)
			os.Exit(1)
		}
		if err := auth.EnsureCreds(ctx); err != nil {
			slog.Error("failed to derive CLOB credentials", "err", err)
			os.Exit(1)
		}
		slog.Info("trading wallet ready", "address", auth.Address())
		executor = polymarket.NewExecutor(auth)
	}

	meteo := openmeteo.NewClient(cfg.API.OpenMeteoBase, cfg.API.EnsembleBase,
		cfg.Sources.StationBiasF, cfg.Sources.StationBiasC)
	sources := forecast.NewMulti(noaa.NewClient(cfg.API.NOAABase), meteo)

	var notifier ports.Notifier = notify.NewConsole(true)
	telegram := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if telegram.Enabled() {
		notifier = notify.NewMulti(notifier, telegram)
		slog.Info("telegram notifications enabled")
	}

	model := domain.NewModel(domain.ModelConfig{
		MinEnsembleMembers: cfg.Sources.MinEnsembleMembers,
		PrimarySource:      cfg.Sources.PrimarySource,
		PrimaryWeight:      cfg.Sources.PrimaryWeight,
		ConsensusWeight:    cfg.Sources.ConsensusWeight,
		SourceBias:         cfg.Sources.SourceBias,
	})

	ledger := engine.NewLedger(store, engine.LedgerConfig{
		MaxExposure: cfg.Strategy.MaxExposure,
		Lookback:    cfg.LedgerLookback(),
	})
	if err := ledger.Rebuild(ctx); err != nil {
		// Sin ledger no sabemos nuestra exposición: parar aquí.
		slog.Error("failed to rebuild ledger from position log", "err", err)
		os.Exit(1)
	}

	eng := engine.New(
		gamma,
		sources,
		meteo,
		gamma,
		executor,
		notifier,
		model,
		engine.NewEvaluator(engine.EvaluatorConfig{
			MinEdge:        cfg.Strategy.MinEdge,
			ExecFraction:   cfg.Strategy.ExecFraction,
			MinMarketPrice: cfg.Strategy.MinMarketPrice,
			BufferF:        cfg.Strategy.ForecastBufferF,
			BufferC:        cfg.Strategy.ForecastBufferC,
		}),
		engine.NewSizer(engine.SizerConfig{
			KellyFraction: cfg.Strategy.KellyFraction,
			Bankroll:      cfg.Strategy.Bankroll,
			MaxPerBucket:  cfg.Strategy.MaxPerBucket,
			MinShares:     cfg.Strategy.MinShares,
			MinStake:      cfg.Strategy.MinStake,
		}),
		ledger,
		engine.Config{
			Interval: cfg.ScanInterval(),
			DryRun:   *dryRun,
			Cities:   cities,
		},
	)

	if *once {
		if _, err := eng.RunOnce(ctx); err != nil {
			slog.Error("cycle failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("engine exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("weatherbot stopped cleanly")
}

// printPositions vuelca el registro de posiciones completo por stdout.
func printPositions(ctx context.Context, store *storage.SQLiteStore) {
	all, err := store.ReadAll(ctx)
	if err != nil {
		slog.Error("failed to read position log", "err", err)
		os.Exit(1)
	}
	if len(all) == 0 {
		fmt.Println("no positions recorded")
		return
	}

	for _, p := range all {
		status := "open"
		if p.Resolved {
			status = p.Outcome
		}
		sim := ""
		if p.Simulated {
			sim = " [dry]"
		}
		fmt.Printf("%s%s  %-40s %-18s $%.2f @ $%.2f  edge %.3f  %s\n",
			p.CreatedAt.Format("2006-01-02 15:04"), sim, p.MarketSlug,
			p.BucketLabel, p.Cost, p.Price, p.Edge, status)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
