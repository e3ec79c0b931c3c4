package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/till/internal/checkout"
)

const (
	configDirName  = ".till"
	configFileName = "config.yaml"

	ShippingFlat    = "flat"
	ShippingPerLine = "per_line"
)

// Config is resolved in layers: defaults, then the YAML file, then TILL_*
// environment variables. Command-line flags are applied last by the caller.
type Config struct {
	DataDir         string   `yaml:"data_dir"`
	Policy          string   `yaml:"policy"`
	Shipping        Shipping `yaml:"shipping"`
	Theme           string   `yaml:"theme"`
	LogLevel        string   `yaml:"log_level"`
	MetricsTextfile string   `yaml:"metrics_textfile"`

	// Source is the config file that was read, empty when none was.
	Source string `yaml:"-"`
}

type Shipping struct {
	Mode   string `yaml:"mode"`
	Amount string `yaml:"amount"`
}

func Default() Config {
	return Config{
		DataDir:  ".",
		Policy:   checkout.AbortOnFirstInvalid.String(),
		Shipping: Shipping{Mode: ShippingFlat, Amount: checkout.DefaultShippingFee.String()},
		Theme:    "classic",
		LogLevel: "warn",
	}
}

// DefaultPath is $TILL_CONFIG, else ~/.till/config.yaml.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv("TILL_CONFIG")); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load resolves the configuration. An empty path means DefaultPath; a missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Source = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg.DataDir = getenv("TILL_DATA_DIR", cfg.DataDir)
	cfg.Policy = getenv("TILL_POLICY", cfg.Policy)
	cfg.Theme = getenv("TILL_THEME", cfg.Theme)
	cfg.LogLevel = getenv("TILL_LOG_LEVEL", cfg.LogLevel)
	cfg.MetricsTextfile = getenv("TILL_METRICS_TEXTFILE", cfg.MetricsTextfile)
	cfg.Shipping.Mode = getenv("TILL_SHIPPING_MODE", cfg.Shipping.Mode)
	cfg.Shipping.Amount = getenv("TILL_SHIPPING_AMOUNT", cfg.Shipping.Amount)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field that can be wrong.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if _, err := checkout.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := c.Fees(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("unknown theme %q (want classic, neon or mono)", c.Theme)
	}
	return nil
}

// CheckoutPolicy parses the configured policy.
func (c Config) CheckoutPolicy() checkout.Policy {
	p, err := checkout.ParsePolicy(c.Policy)
	if err != nil {
		return checkout.AbortOnFirstInvalid
	}
	return p
}

// Fees builds the configured shipping fee schedule.
func (c Config) Fees() (checkout.FeeSchedule, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.Shipping.Amount))
	if err != nil {
		return nil, fmt.Errorf("shipping.amount %q: %w", c.Shipping.Amount, err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("shipping.amount must not be negative")
	}
	switch strings.ToLower(c.Shipping.Mode) {
	case ShippingFlat:
		return checkout.FlatFee{Amount: amount}, nil
	case ShippingPerLine:
		return checkout.PerShippableLine{Amount: amount}, nil
	default:
		return nil, fmt.Errorf("unknown shipping.mode %q (want %s or %s)", c.Shipping.Mode, ShippingFlat, ShippingPerLine)
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
