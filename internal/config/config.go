package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the bridge's runtime settings: which USB device to open,
// how many blocks to pump per transfer, and where the status API listens.
type Config struct {
	Bus int
	Address int
	BlocksPerTransfer int
	StatusAddr string
	LogLevel string
}

var (
	loaded *Config
	loadedGuard bool
)

// Load reads .env from the project root (if present), then overrides from
// the process environment, caching the result for subsequent calls.
func Load() (*Config, error) {
	if loaded != nil && loadedGuard {
		return loaded, nil
	}

	cfg := &Config{
		Bus: 0,
		Address: 0,
		BlocksPerTransfer: 8,
		StatusAddr: ":8088",
		LogLevel: "info",
	}

	projectRoot := findProjectRoot()
	envPath := filepath.Join(projectRoot, ".env")
	if data, err := os.ReadFile(envPath); err == nil {
		parseEnvFile(string(data), cfg)
	}

	if v := os.Getenv("USBRIDGE_BUS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bus = n
		}
	}
	if v := os.Getenv("USBRIDGE_ADDRESS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Address = n
		}
	}
	if v := os.Getenv("USBRIDGE_BLOCKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BlocksPerTransfer = n
		}
	}
	if v := os.Getenv("USBRIDGE_STATUS_ADDR"); v != "" {
		cfg.StatusAddr = v
	}
	if v := os.Getenv("USBRIDGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	loaded = cfg
	loadedGuard = true
	return cfg, nil
}

func parseEnvFile(content string, cfg *Config) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "USBRIDGE_BUS":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.Bus = n
			}
		case "USBRIDGE_ADDRESS":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.Address = n
			}
		case "USBRIDGE_BLOCKS":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.BlocksPerTransfer = n
			}
		case "USBRIDGE_STATUS_ADDR":
			cfg.StatusAddr = value
		case "USBRIDGE_LOG_LEVEL":
			cfg.LogLevel = value
		}
	}
}

func findProjectRoot() string {
	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
		return cwd
	}
	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return cwd
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return cwd
		}
		cwd = parent
	}
}
