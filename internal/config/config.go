package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// defaultSessionSecret signs cookies in offline mode only.
const defaultSessionSecret = "supersecret-dev-key"

type Config struct {
	Mode     Mode   `env:"MODE" envDefault:"offline"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	CORSOriginsOnline  []string `env:"CORS_ORIGINS_ONLINE" envSeparator:"," envDefault:"https://whosthat.mindengage.ai"`
	CORSOriginsOffline []string `env:"CORS_ORIGINS_OFFLINE" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:8080"`

	// Catalog source (PokeAPI-compatible list endpoint)
	CatalogBaseURL string        `env:"CATALOG_BASE_URL" envDefault:"https://pokeapi.co/api/v2"`
	CatalogLimit   int           `env:"CATALOG_LIMIT" envDefault:"10000"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"15s"`
	ArtworkURL     string        `env:"ARTWORK_URL_TEMPLATE" envDefault:"https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%d.png"`

	RevealDelay   time.Duration `env:"REVEAL_DELAY" envDefault:"1s"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"supersecret-dev-key"`

	DBDriver string `env:"DB_DRIVER" envDefault:"none"` // none|sqlite|postgres
	DBDSN    string `env:"DB_DSN"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`
}

// FromEnv loads the configuration from the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORSOriginsOnline = trimAll(cfg.CORSOriginsOnline)
	cfg.CORSOriginsOffline = trimAll(cfg.CORSOriginsOffline)
	cfg.CatalogBaseURL = strings.TrimSuffix(cfg.CatalogBaseURL, "/")
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CORSOrigins returns the allowed origins for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeOffline, ModeOnline:
	default:
		return fmt.Errorf("config: unknown MODE %q", c.Mode)
	}
	switch c.DBDriver {
	case "none", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.CatalogLimit <= 0 {
		return fmt.Errorf("config: CATALOG_LIMIT must be positive, got %d", c.CatalogLimit)
	}
	if !strings.Contains(c.ArtworkURL, "%d") {
		return fmt.Errorf("config: ARTWORK_URL_TEMPLATE must contain %%d")
	}
	if c.Mode == ModeOnline && (c.SessionSecret == "" || c.SessionSecret == defaultSessionSecret) {
		return fmt.Errorf("config: SESSION_SECRET must be set to a non-default value in online mode")
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
