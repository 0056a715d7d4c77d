package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"moviefinder/internal/logging"
	"moviefinder/pkg/database"
)

const (
	EnvPrefix     = "MOVIEFINDER_"
	ConfigPathEnv = "MOVIEFINDER_CONFIG"
)

// DefaultConfigPaths are tried in order when no explicit path is given.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moviefinder/config.yaml",
}

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Completion CompletionConfig `koanf:"completion"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Search     SearchConfig     `koanf:"search"`
	Log        logging.Config   `koanf:"log"`
}

type ServerConfig struct {
	Addr           string   `koanf:"addr" validate:"required"`
	TrustedProxies []string `koanf:"trusted_proxies"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// CompletionConfig points at an Ollama-compatible /api/generate endpoint.
type CompletionConfig struct {
	URL     string        `koanf:"url" validate:"required,url"`
	Model   string        `koanf:"model" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type CatalogConfig struct {
	BaseURL  string        `koanf:"base_url" validate:"required,url"`
	APIKey   string        `koanf:"api_key"`
	Language string        `koanf:"language" validate:"required"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

type SearchConfig struct {
	// Language is the display language used when a request does not name one.
	Language string `koanf:"language" validate:"required"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			TrustedProxies: []string{"127.0.0.1"},
		},
		Database: DatabaseConfig{Path: database.DefaultPath()},
		Completion: CompletionConfig{
			URL:     "http://localhost:11434/api/generate",
			Model:   "llama3",
			Timeout: 120 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL:  "https://api.themoviedb.org/3",
			Language: "en-US",
			Timeout:  15 * time.Second,
		},
		Search: SearchConfig{Language: "es"},
		Log:    logging.DefaultConfig(),
	}
}

// LoadConfig layers defaults, an optional YAML file and MOVIEFINDER_* env
// vars, in that order. An empty path means "look in the usual places".
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	// MOVIEFINDER_SERVER_TRUSTED_PROXIES=a,b
	if s, ok := k.Get("server.trusted_proxies").(string); ok {
		if err := k.Set("server.trusted_proxies", splitList(s)); err != nil {
			return nil, fmt.Errorf("set trusted proxies: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envKey maps MOVIEFINDER_CATALOG_API_KEY to catalog.api_key: the first
// segment is the section, the rest is the field name.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
