package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RochdiFERjaoui1234/rchidrun/engine"
	"github.com/RochdiFERjaoui1234/rchidrun/store"
)

func TestLoadConfigMissingHome(t *testing.T) {
	t.Setenv("HOME", "")
	if _, err := loadConfig(); !errors.Is(err, store.ErrMissingHome) {
		t.Errorf("loadConfig error = %v, want ErrMissingHome", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := loadConfigFrom(home, filepath.Join(home, ".rchidrun", "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Home != home {
		t.Errorf("Home = %q, want %q", cfg.Home, home)
	}
	if cfg.WasmerBin != "wasmer" {
		t.Errorf("WasmerBin = %q, want wasmer", cfg.WasmerBin)
	}
	if cfg.DownloadTimeout != 0 || cfg.MemoryLimitPages != 0 || cfg.DiskCache {
		t.Errorf("unexpected non-default config: %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	content := `
wasmer_bin = "/opt/wasmer/bin/wasmer"
download_timeout = "45s"
memory_limit = "64mb"
disk_cache = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfigFrom(home, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WasmerBin != "/opt/wasmer/bin/wasmer" {
		t.Errorf("WasmerBin = %q", cfg.WasmerBin)
	}
	if cfg.DownloadTimeout != 45*time.Second {
		t.Errorf("DownloadTimeout = %v, want 45s", cfg.DownloadTimeout)
	}
	if cfg.MemoryLimitPages != engine.MemoryLimit64MB {
		t.Errorf("MemoryLimitPages = %d, want %d", cfg.MemoryLimitPages, engine.MemoryLimit64MB)
	}
	if !cfg.DiskCache {
		t.Error("DiskCache not set")
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	if err := os.WriteFile(path, []byte(`download_timeout = "soon"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfigFrom(home, path); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestParseMemoryLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"16mb", engine.MemoryLimit16MB, false},
		{"256MB", engine.MemoryLimit256MB, false},
		{"1gb", engine.MemoryLimit1GB, false},
		{"none", 0, false},
		{"", 0, false},
		{"12kb", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMemoryLimit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMemoryLimit(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMemoryLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
