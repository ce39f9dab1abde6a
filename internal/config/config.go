package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/liveurl/internal/nav"
)

// EndpointConfig names the canonical origin the navigation service
// builds absolute URLs against.
type EndpointConfig struct {
	Scheme string `toml:"scheme"`
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
}

type ServiceConfig struct {
	Name            string         `toml:"name"`
	Addr            string         `toml:"addr"`
	CorsOrigins     []string       `toml:"cors_origins"`
	ShutdownGraceMS int            `toml:"shutdown_grace_ms"`
	Endpoint        EndpointConfig `toml:"endpoint"`
}

func LoadServiceConfig(path string) (ServiceConfig, error) {
	var cfg ServiceConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServiceConfig{}, err
	}
	cfg = WithDefaults(cfg)
	if err := ValidateServiceConfig(cfg); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

// WithDefaults fills the fields the file left unset.
func WithDefaults(cfg ServiceConfig) ServiceConfig {
	if cfg.Name == "" {
		cfg.Name = "liveurld"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9400"
	}
	if cfg.ShutdownGraceMS == 0 {
		cfg.ShutdownGraceMS = 5000
	}
	if cfg.Endpoint.Scheme == "" {
		cfg.Endpoint.Scheme = "http"
	}
	if cfg.Endpoint.Host == "" {
		cfg.Endpoint.Host = "localhost"
	}
	if cfg.Endpoint.Port == 0 {
		if cfg.Endpoint.Scheme == "https" {
			cfg.Endpoint.Port = 443
		} else {
			cfg.Endpoint.Port = 80
		}
	}
	return cfg
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServiceConfig(cfg ServiceConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("service config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("service config missing addr")
	}
	if cfg.ShutdownGraceMS < 0 {
		return fmt.Errorf("service config shutdown_grace_ms must not be negative")
	}
	if err := ValidateEndpoint(cfg.Endpoint); err != nil {
		return fmt.Errorf("endpoint invalid: %w", err)
	}
	return nil
}

func ValidateEndpoint(cfg EndpointConfig) error {
	switch cfg.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("scheme must be http or https, got %q", cfg.Scheme)
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port out of range: %d", cfg.Port)
	}
	return nil
}

// BaseURL builds the session origin at the root path with no params.
func BaseURL(cfg EndpointConfig) (nav.URL, error) {
	u, err := nav.ParseURL(fmt.Sprintf("%s://%s:%d/", cfg.Scheme, cfg.Host, cfg.Port))
	if err != nil {
		return nav.URL{}, fmt.Errorf("endpoint config unusable: %w", err)
	}
	return u, nil
}
