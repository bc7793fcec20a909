// Package config loads application configuration from defaults, an optional
// TOML file and environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// StoreKind selects the KeyValueStore implementation.
type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreBolt   StoreKind = "bolt"
)

// ConfigFileEnv names the variable holding the optional TOML file path.
const ConfigFileEnv = "REPOWATCH_CONFIG"

// Config holds the validated application configuration.
type Config struct {
	ListenAddr     string
	Store          StoreKind
	DBPath         string
	BoltPath       string
	APIBaseURL     string
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	LogLevel       slog.Level
}

// fileConfig mirrors the TOML file. Empty fields leave the default in place.
type fileConfig struct {
	ListenAddr     string `toml:"listen_addr"`
	Store          string `toml:"store"`
	DBPath         string `toml:"db_path"`
	BoltPath       string `toml:"bolt_path"`
	APIBaseURL     string `toml:"api_base_url"`
	RequestTimeout string `toml:"request_timeout"`
	SessionTTL     string `toml:"session_ttl"`
	LogLevel       string `toml:"log_level"`
}

// setting is one raw value and where it came from, for error messages.
type setting struct {
	value  string
	source string
}

// Load builds a Config. Precedence, lowest first: built-in defaults, the TOML
// file named by REPOWATCH_CONFIG, REPOWATCH_* environment variables. Invalid
// values fail with an error naming the variable or file key.
//
// Variables: REPOWATCH_LISTEN_ADDR (127.0.0.1:8080), REPOWATCH_STORE (sqlite),
// REPOWATCH_DB_PATH (repowatch.db), REPOWATCH_BOLT_PATH (repowatch.bolt),
// REPOWATCH_API_BASE_URL (https://api.github.com/), REPOWATCH_REQUEST_TIMEOUT
// (15s), REPOWATCH_SESSION_TTL (30m), REPOWATCH_LOG_LEVEL (info).
func Load() (*Config, error) {
	s := map[string]setting{
		"listen_addr":     {value: "127.0.0.1:8080"},
		"store":           {value: string(StoreSQLite)},
		"db_path":         {value: "repowatch.db"},
		"bolt_path":       {value: "repowatch.bolt"},
		"api_base_url":    {value: "https://api.github.com/"},
		"request_timeout": {value: "15s"},
		"session_ttl":     {value: "30m"},
		"log_level":       {value: "info"},
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for key, v := range map[string]string{
			"listen_addr":     fc.ListenAddr,
			"store":           fc.Store,
			"db_path":         fc.DBPath,
			"bolt_path":       fc.BoltPath,
			"api_base_url":    fc.APIBaseURL,
			"request_timeout": fc.RequestTimeout,
			"session_ttl":     fc.SessionTTL,
			"log_level":       fc.LogLevel,
		} {
			if v != "" {
				s[key] = setting{value: v, source: fmt.Sprintf("%s key %s", path, key)}
			}
		}
	}

	for key := range s {
		env := "REPOWATCH_" + strings.ToUpper(key)
		if v, ok := os.LookupEnv(env); ok {
			s[key] = setting{value: v, source: env}
		}
	}

	return build(s)
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read config file: %w", ConfigFileEnv, err)
	}

	var fc fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("config file %s: unknown keys:\n%s", path, strict.String())
		}
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &fc, nil
}

func build(s map[string]setting) (*Config, error) {
	name := func(key string) string {
		if src := s[key].source; src != "" {
			return src
		}
		return "REPOWATCH_" + strings.ToUpper(key)
	}

	cfg := &Config{
		ListenAddr: s["listen_addr"].value,
		DBPath:     s["db_path"].value,
		BoltPath:   s["bolt_path"].value,
		APIBaseURL: s["api_base_url"].value,
	}

	if cfg.ListenAddr == "" {
		return nil, fmt.Errorf("%s must not be empty", name("listen_addr"))
	}

	switch kind := StoreKind(s["store"].value); kind {
	case StoreSQLite, StoreBolt:
		cfg.Store = kind
	default:
		return nil, fmt.Errorf("%s has invalid store %q: expected sqlite or bolt", name("store"), s["store"].value)
	}

	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s has invalid URL %q", name("api_base_url"), cfg.APIBaseURL)
	}

	var err error
	if cfg.RequestTimeout, err = parseDuration(s["request_timeout"].value); err != nil {
		return nil, fmt.Errorf("%s has invalid duration %q: %w", name("request_timeout"), s["request_timeout"].value, err)
	}
	if cfg.SessionTTL, err = parseDuration(s["session_ttl"].value); err != nil {
		return nil, fmt.Errorf("%s has invalid duration %q: %w", name("session_ttl"), s["session_ttl"].value, err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(s["log_level"].value)); err != nil {
		return nil, fmt.Errorf("%s has invalid log level %q: expected debug, info, warn or error", name("log_level"), s["log_level"].value)
	}

	return cfg, nil
}

func parseDuration(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}
