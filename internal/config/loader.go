package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known STT provider names.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = []string{"openai", "whisper", "mock"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Provider
	validateProviderName(cfg.Provider.Name)
	switch cfg.Provider.Name {
	case "openai":
		if cfg.Provider.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			errs = append(errs, errors.New("provider.api_key is required for the openai provider (or set OPENAI_API_KEY)"))
		}
	case "whisper":
		if cfg.Provider.BaseURL == "" {
			errs = append(errs, errors.New("provider.base_url is required for the whisper provider (whisper-server address)"))
		}
	case "":
		slog.Warn("no STT provider configured; evaluation requests will fail")
	}

	// Storage
	if cfg.Storage.Backend != "" && !cfg.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("storage.backend %q is invalid; valid values: memory, file, postgres", cfg.Storage.Backend))
	}
	if cfg.Storage.Backend == StoragePostgres && cfg.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("storage.postgres_dsn is required when storage.backend is postgres"))
	}
	if cfg.Storage.Backend == StorageMemory {
		slog.Warn("storage.backend is memory; progress will not survive a restart")
	}

	// Practice
	if cfg.Practice.FocusLimit < 0 {
		errs = append(errs, fmt.Errorf("practice.focus_limit %d must not be negative", cfg.Practice.FocusLimit))
	}
	wordsSeen := make(map[string]int, len(cfg.Practice.Words))
	for i, w := range cfg.Practice.Words {
		if w == "" {
			errs = append(errs, fmt.Errorf("practice.words[%d] is empty", i))
			continue
		}
		if prev, ok := wordsSeen[w]; ok {
			errs = append(errs, fmt.Errorf("practice.words[%d] %q is a duplicate of practice.words[%d]", i, w, prev))
		}
		wordsSeen[w] = i
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// [ValidProviderNames].
func validateProviderName(name string) {
	if name == "" || slices.Contains(ValidProviderNames, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"name", name,
		"known", ValidProviderNames,
	)
}
