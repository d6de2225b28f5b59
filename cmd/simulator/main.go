package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aantao/marksim/config"
	"github.com/aantao/marksim/internal/adapters/notify"
	"github.com/aantao/marksim/internal/adapters/storage"
	"github.com/aantao/marksim/internal/application/engine"
	"github.com/aantao/marksim/internal/domain"
)

const usage = `usage: simulator [flags] <command> [args]

commands:
  init <code>...        initialize the game with the given team codes
  codes <n>             generate n random team codes (does not persist)
  submit <file.yaml>    submit one team's decisions for the current period
  status                show who has submitted for the current period
  preview               dry-run the current period, nothing is saved
  run                   simulate the current period and advance
  standings             print the cohort ranking
  history <team> <product>   print one product's period history
  rollback <period>     undo a simulated period (highest only)
  recalc                replay past periods under current formulas
  reset                 wipe everything (asks twice)

flags:
`

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	yes := flag.Bool("yes", false, "answer yes to confirmation prompts")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

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

	store, err := storage.NewSQLite(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	console := notify.NewConsole()
	store.SetNotifier(console)

	engCfg := engine.Config{
		TotalPeriods:      cfg.Simulation.TotalPeriods,
		HistoricalPeriods: cfg.Simulation.HistoricalPeriods,
		StartYear:         cfg.Simulation.StartYear,
	}
	eng := engine.New(engCfg, domain.DefaultTables(), store)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &cli{eng: eng, console: console, assumeYes: *yes}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := app.dispatch(ctx, cmd, args); err != nil {
		slog.Error("command failed", "command", cmd, "err", err)
		os.Exit(1)
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
