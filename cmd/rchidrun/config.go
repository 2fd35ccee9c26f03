package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/RochdiFERjaoui1234/rchidrun/engine"
	"github.com/RochdiFERjaoui1234/rchidrun/store"
)

// config carries the resolved process-wide settings. The home directory
// comes from $HOME and is resolved exactly once, before any filesystem or
// network access; everything else has a default overridable by
// <home>/.rchidrun/config.toml.
type config struct {
	Home             string
	WasmerBin        string
	DownloadTimeout  time.Duration
	MemoryLimitPages uint32
	DiskCache        bool
}

type fileConfig struct {
	WasmerBin       string `toml:"wasmer_bin"`
	DownloadTimeout string `toml:"download_timeout"`
	MemoryLimit     string `toml:"memory_limit"`
	DiskCache       bool   `toml:"disk_cache"`
}

func loadConfig() (config, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return config{}, store.ErrMissingHome
	}
	return loadConfigFrom(home, filepath.Join(home, ".rchidrun", "config.toml"))
}

func loadConfigFrom(home, path string) (config, error) {
	cfg := config{
		Home:      home,
		WasmerBin: "wasmer",
		// Zero means no download timeout: installs block on transport I/O.
		DownloadTimeout: 0,
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("wasmer_bin") && strings.TrimSpace(raw.WasmerBin) != "" {
		cfg.WasmerBin = strings.TrimSpace(raw.WasmerBin)
	}

	if meta.IsDefined("download_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DownloadTimeout))
		if err != nil {
			return config{}, fmt.Errorf("parse download_timeout: %w", err)
		}
		cfg.DownloadTimeout = d
	}

	if meta.IsDefined("memory_limit") {
		pages, err := parseMemoryLimit(raw.MemoryLimit)
		if err != nil {
			return config{}, err
		}
		cfg.MemoryLimitPages = pages
	}

	if meta.IsDefined("disk_cache") {
		cfg.DiskCache = raw.DiskCache
	}

	return cfg, nil
}

func parseMemoryLimit(s string) (uint32, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return 0, nil
	case "16mb":
		return engine.MemoryLimit16MB, nil
	case "64mb":
		return engine.MemoryLimit64MB, nil
	case "256mb":
		return engine.MemoryLimit256MB, nil
	case "1gb":
		return engine.MemoryLimit1GB, nil
	default:
		return 0, fmt.Errorf("parse memory_limit: %q (expected 16mb, 64mb, 256mb, 1gb, or none)", s)
	}
}
