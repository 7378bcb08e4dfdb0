package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"creatorhub/native/platform"
)

// ErrFeeTooHigh rejects configurations whose platform fee exceeds the 1000
// basis point ceiling. The fee is fixed at startup and never re-settable.
var ErrFeeTooHigh = errors.New("config: PlatformFeeBps exceeds 1000")

const maxPlatformFeeBps = 1000

// Config carries the daemon's startup parameters. The payment token and the
// platform fee are initialization-time values; every ledger operation treats
// them as read-only.
type Config struct {
	RPCAddress      string `toml:"RPCAddress"`
	OpsAddress      string `toml:"OpsAddress"`
	DataDir         string `toml:"DataDir"`
	Env             string `toml:"Env"`
	RPCAuthToken    string `toml:"RPCAuthToken"`
	LogFile         string `toml:"LogFile"`
	PaymentToken    string `toml:"PaymentToken"`
	FeeCollector    string `toml:"FeeCollector"`
	PlatformFeeBps  uint32 `toml:"PlatformFeeBps"`
	PaymentsEnabled bool   `toml:"PaymentsEnabled"`
	EventTailLimit  int    `toml:"EventTailLimit"`
}

// Load reads the configuration from the given path, creating a commented
// default file when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.OpsAddress) == "" {
		cfg.OpsAddress = "127.0.0.1:9090"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "local"
	}
	if cfg.EventTailLimit <= 0 {
		cfg.EventTailLimit = 256
	}
}

// Validate checks the bounds and address formats that must hold before the
// ledger starts serving.
func (cfg *Config) Validate() error {
	if cfg.PlatformFeeBps > maxPlatformFeeBps {
		return ErrFeeTooHigh
	}
	if trimmed := strings.TrimSpace(cfg.PaymentToken); trimmed != "" {
		if _, err := platform.ParseAddress(trimmed); err != nil {
			return fmt.Errorf("config: invalid PaymentToken: %w", err)
		}
	}
	if trimmed := strings.TrimSpace(cfg.FeeCollector); trimmed != "" {
		if _, err := platform.ParseAddress(trimmed); err != nil {
			return fmt.Errorf("config: invalid FeeCollector: %w", err)
		}
	}
	if cfg.PaymentsEnabled && strings.TrimSpace(cfg.PaymentToken) == "" {
		return errors.New("config: PaymentsEnabled requires PaymentToken")
	}
	if cfg.PaymentsEnabled && cfg.PlatformFeeBps > 0 && strings.TrimSpace(cfg.FeeCollector) == "" {
		return errors.New("config: PaymentsEnabled with a non-zero PlatformFeeBps requires FeeCollector")
	}
	return nil
}

// PaymentTokenAddress decodes the configured token reference.
func (cfg *Config) PaymentTokenAddress() ([20]byte, error) {
	return platform.ParseAddress(cfg.PaymentToken)
}

// FeeCollectorAddress decodes the configured fee collector account.
func (cfg *Config) FeeCollectorAddress() ([20]byte, error) {
	return platform.ParseAddress(cfg.FeeCollector)
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.WriteString("# creatorhubd configuration\n\n"); err != nil {
		return nil, err
	}
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
