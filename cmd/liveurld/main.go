package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/liveurl/internal/config"
	"github.com/danmuck/liveurl/internal/logging"
	"github.com/danmuck/liveurl/internal/observability"
	"github.com/danmuck/liveurl/internal/server"
)

func main() {
	var (
		configPath  string
		writeConfig bool
	)
	flag.StringVar(&configPath, "config", "liveurld.toml", "path to service config")
	flag.BoolVar(&writeConfig, "write-config", false, "write a default config to -config and exit")
	flag.Parse()

	logging.ConfigureRuntime()
	log := logging.Component("liveurld")

	if writeConfig {
		if err := config.WriteTemplate(configPath, "service", false); err != nil {
			log.Fatal().Err(err).Msg("write config template")
		}
		log.Info().Str("path", configPath).Msg("config template written")
		return
	}

	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	observability.RegisterMetrics()
	svc, err := server.NewService(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := svc.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("service exited")
	}
}

// loadConfigOrDefault falls back to defaults when the default config
// path does not exist; an explicitly broken file is still fatal.
func loadConfigOrDefault(path string) (config.ServiceConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.WithDefaults(config.ServiceConfig{}), nil
	}
	return loadServiceConfig(path)
}
