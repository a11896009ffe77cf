package appconf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the -env flag value to an Environment. Unknown values fall
// back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// Config holds all the configuration settings shared by the CLI commands and the API server.
type Config struct {
	Env         Environment `yaml:"-"`
	EnvName     string      `yaml:"env" validate:"omitempty,oneof=development test production prod"`
	Port        int         `yaml:"port" validate:"gte=0,lte=65535"`
	ApiKeys     []string    `yaml:"apiKeys"`
	RateLimit   int         `yaml:"rateLimit" validate:"gte=0"`
	DBPath      string      `yaml:"dbPath"`
	SolverURL   string      `yaml:"solverURL" validate:"omitempty,url"`
	NATSURL     string      `yaml:"natsURL" validate:"omitempty,url"`
	MetricsAddr string      `yaml:"metricsAddr" validate:"omitempty,hostname_port"`
	LogLevel    string      `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`
	Verbose     bool        `yaml:"verbose"`
}

// Defaults returns the configuration used when neither a file nor the environment sets a value.
func Defaults() Config {
	return Config{
		Env:       Development,
		EnvName:   Development.String(),
		Port:      4000,
		ApiKeys:   []string{"test"},
		RateLimit: 100,
		DBPath:    "gtfs.db",
		LogLevel:  "info",
	}
}

// Load builds a Config from defaults, an optional YAML file and the process environment
// (after loading a .env file when one is present). Later sources override earlier ones.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	cfg.Env = EnvFlagToEnvironment(cfg.EnvName)
	return cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.EnvName = v
	}
	if v := os.Getenv("TRANSIT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SOLVER_URL"); v != "" {
		cfg.SolverURL = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("API_KEYS"); v != "" {
		cfg.ApiKeys = SplitKeys(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Port = port
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT: %q", v)
		}
		cfg.RateLimit = limit
	}
	return nil
}

// SplitKeys splits a comma separated list and trims every element.
func SplitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
