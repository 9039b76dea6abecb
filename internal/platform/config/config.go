package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second

	defaultPriceFloor        = int64(0)
	defaultRangeWeightFactor = 0.3
	defaultFormulaCacheSize  = 256
	defaultFormulaTimeout    = 50 * time.Millisecond
	defaultMaxItems          = 100
	defaultMaxQuantity       = 1000
	defaultMaxModifierCodes  = 20
	defaultMaxCodeLength     = 50
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Pricing PricingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// PricingConfig holds the tunables of the pricing core.
type PricingConfig struct {
	// PriceFloor is the minimum item price in minor units.
	PriceFloor int64
	// RangeWeightFactor weights RANGE_PERCENTAGE defaults toward the minimum.
	RangeWeightFactor float64
	FormulaCacheSize  int
	FormulaTimeout    time.Duration
	MaxItems          int
	MaxQuantity       int
	MaxModifierCodes  int
	MaxCodeLength     int
}

// ValidationError is returned when required configuration fields are missing
// or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values
// in the map take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided
// maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env
// overrides, and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "PRICING_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "PRICING_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "PRICING_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "PRICING_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Pricing: PricingConfig{
			PriceFloor:        int64WithDefault(lookup, "PRICING_PRICE_FLOOR", defaultPriceFloor),
			RangeWeightFactor: floatWithDefault(lookup, "PRICING_RANGE_WEIGHT_FACTOR", defaultRangeWeightFactor),
			FormulaCacheSize:  intWithDefault(lookup, "PRICING_FORMULA_CACHE_SIZE", defaultFormulaCacheSize),
			FormulaTimeout:    durationWithDefault(lookup, "PRICING_FORMULA_TIMEOUT", defaultFormulaTimeout),
			MaxItems:          intWithDefault(lookup, "PRICING_MAX_ITEMS", defaultMaxItems),
			MaxQuantity:       intWithDefault(lookup, "PRICING_MAX_QUANTITY", defaultMaxQuantity),
			MaxModifierCodes:  intWithDefault(lookup, "PRICING_MAX_MODIFIER_CODES", defaultMaxModifierCodes),
			MaxCodeLength:     intWithDefault(lookup, "PRICING_MAX_CODE_LENGTH", defaultMaxCodeLength),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	}
	if cfg.Pricing.PriceFloor < 0 {
		invalid = append(invalid, "Pricing.PriceFloor")
	}
	if cfg.Pricing.RangeWeightFactor < 0 || cfg.Pricing.RangeWeightFactor > 1 {
		invalid = append(invalid, "Pricing.RangeWeightFactor")
	}
	if cfg.Pricing.FormulaCacheSize <= 0 {
		invalid = append(invalid, "Pricing.FormulaCacheSize")
	}
	if cfg.Pricing.FormulaTimeout <= 0 {
		invalid = append(invalid, "Pricing.FormulaTimeout")
	}
	if cfg.Pricing.MaxItems <= 0 {
		invalid = append(invalid, "Pricing.MaxItems")
	}
	if cfg.Pricing.MaxQuantity <= 0 {
		invalid = append(invalid, "Pricing.MaxQuantity")
	}
	if cfg.Pricing.MaxModifierCodes <= 0 {
		invalid = append(invalid, "Pricing.MaxModifierCodes")
	}
	if cfg.Pricing.MaxCodeLength <= 0 {
		invalid = append(invalid, "Pricing.MaxCodeLength")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func int64WithDefault(lookup func(string) (string, bool), key string, fallback int64) int64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
