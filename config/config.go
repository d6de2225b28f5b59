package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del simulador.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// SimulationConfig controla la estructura temporal de la partida.
type SimulationConfig struct {
	TotalPeriods      int `yaml:"total_periods"`      // periodos totales, histórico incluido
	HistoricalPeriods int `yaml:"historical_periods"` // periodos pregrabados al inicializar
	StartYear         int `yaml:"start_year"`         // año del primer trimestre
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Si el archivo YAML no existe se parte de los defaults, para que el binario
// funcione sin config en una clase recién montada.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin archivo: defaults + env
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKSIM_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("MARKSIM_TOTAL_PERIODS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.TotalPeriods = n
		}
	}
	if v := os.Getenv("MARKSIM_START_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.StartYear = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Simulation.TotalPeriods <= 0 {
		cfg.Simulation.TotalPeriods = 10
	}
	if cfg.Simulation.HistoricalPeriods <= 0 {
		cfg.Simulation.HistoricalPeriods = 5
	}
	if cfg.Simulation.StartYear <= 0 {
		cfg.Simulation.StartYear = 2024
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "marksim.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// validate rechaza combinaciones que romperían el motor.
func validate(cfg *Config) error {
	if cfg.Simulation.HistoricalPeriods >= cfg.Simulation.TotalPeriods {
		return fmt.Errorf("config.Load: historical_periods (%d) must be below total_periods (%d)",
			cfg.Simulation.HistoricalPeriods, cfg.Simulation.TotalPeriods)
	}
	return nil
}
