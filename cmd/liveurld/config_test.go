package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/liveurl/internal/testutil/testlog"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liveurld.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadServiceConfigOverlaysDefinedKeysOnly(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, `
addr = ":9999"

[endpoint]
host = "app.example.com"
`)

	cfg, err := loadServiceConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("addr not overridden: %q", cfg.Addr)
	}
	if cfg.Name != "liveurld" || cfg.ShutdownGraceMS != 5000 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Endpoint.Host != "app.example.com" || cfg.Endpoint.Scheme != "http" || cfg.Endpoint.Port != 80 {
		t.Fatalf("endpoint overlay wrong: %+v", cfg.Endpoint)
	}
}

func TestLoadServiceConfigRejectsInvalidOverride(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "[endpoint]\nscheme = \"gopher\"\n")
	if _, err := loadServiceConfig(path); err == nil {
		t.Fatalf("expected scheme rejection")
	}
}

func TestLoadConfigOrDefaultMissingFile(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadConfigOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing default config should not be fatal: %v", err)
	}
	if cfg.Addr != ":9400" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
