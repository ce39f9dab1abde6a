package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/liveurl/internal/config"
)

// fileConfig maps liveurld.toml keys onto the service configuration.
type fileConfig struct {
	Name            string             `toml:"name"`
	Addr            string             `toml:"addr"`
	CorsOrigins     []string           `toml:"cors_origins"`
	ShutdownGraceMS int                `toml:"shutdown_grace_ms"`
	Endpoint        fileEndpointConfig `toml:"endpoint"`
}

type fileEndpointConfig struct {
	Scheme string `toml:"scheme"`
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
}

// loadServiceConfig overlays the file on top of defaults: only keys the
// file actually defines override, so a zero in the file is an explicit
// zero.
func loadServiceConfig(path string) (config.ServiceConfig, error) {
	cfg := config.WithDefaults(config.ServiceConfig{})

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.ServiceConfig{}, fmt.Errorf("load liveurld config: %w", err)
	}

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("shutdown_grace_ms") {
		cfg.ShutdownGraceMS = raw.ShutdownGraceMS
	}
	if meta.IsDefined("endpoint", "scheme") {
		cfg.Endpoint.Scheme = strings.TrimSpace(raw.Endpoint.Scheme)
	}
	if meta.IsDefined("endpoint", "host") {
		cfg.Endpoint.Host = strings.TrimSpace(raw.Endpoint.Host)
	}
	if meta.IsDefined("endpoint", "port") {
		cfg.Endpoint.Port = raw.Endpoint.Port
	}

	if err := config.ValidateServiceConfig(cfg); err != nil {
		return config.ServiceConfig{}, fmt.Errorf("load liveurld config: %w", err)
	}
	return cfg, nil
}
