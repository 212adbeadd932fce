// Package config loads runtime settings from an optional .env file, an
// optional testgen.yaml and TESTGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "TESTGEN"

type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	Browser  BrowserConfig
	AI       AIConfig
	Generate GenerateConfig
	Log      LogConfig
}

type ServerConfig struct {
	Addr string
}

type SessionConfig struct {
	TTL           time.Duration
	Max           int
	Store         string // memory | sqlite
	SQLitePath    string
	SweepInterval time.Duration
}

type BrowserConfig struct {
	Driver         string // http | playwright | selenium | rod
	Headless       bool
	DriverPath     string
	ChromePath     string
	RemoteURL      string
	ExtractTimeout time.Duration
	StepTimeout    time.Duration
}

type AIConfig struct {
	Enabled bool
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type GenerateConfig struct {
	BatchSize   int
	SnapshotDir string
}

type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".ai_testgen")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.max", 1000)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.sqlite_path", filepath.Join(dataDir, "sessions.db"))
	v.SetDefault("session.sweep_interval", time.Minute)
	v.SetDefault("browser.driver", "http")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.driver_path", "")
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.extract_timeout", 30*time.Second)
	v.SetDefault("browser.step_timeout", 15*time.Second)
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("generate.batch_size", 10)
	v.SetDefault("generate.snapshot_dir", filepath.Join(dataDir, "snapshots"))
	v.SetDefault("log.level", "info")
}

// Load reads configuration. path names an explicit config file; when empty
// testgen.yaml is looked up in the working directory and ~/.ai_testgen.
func Load(path string) (*Config, error) {
	// .env file is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ai.api_key", envPrefix+"_AI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("ai.model", envPrefix+"_AI_MODEL", "OPENAI_MODEL"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("testgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ai_testgen"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{Addr: v.GetString("server.addr")},
		Session: SessionConfig{
			TTL:           v.GetDuration("session.ttl"),
			Max:           v.GetInt("session.max"),
			Store:         strings.ToLower(v.GetString("session.store")),
			SQLitePath:    v.GetString("session.sqlite_path"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
		},
		Browser: BrowserConfig{
			Driver:         strings.ToLower(v.GetString("browser.driver")),
			Headless:       v.GetBool("browser.headless"),
			DriverPath:     v.GetString("browser.driver_path"),
			ChromePath:     v.GetString("browser.chrome_path"),
			RemoteURL:      v.GetString("browser.remote_url"),
			ExtractTimeout: v.GetDuration("browser.extract_timeout"),
			StepTimeout:    v.GetDuration("browser.step_timeout"),
		},
		AI: AIConfig{
			Enabled: v.GetBool("ai.enabled"),
			APIKey:  v.GetString("ai.api_key"),
			Model:   v.GetString("ai.model"),
			BaseURL: v.GetString("ai.base_url"),
			Timeout: v.GetDuration("ai.timeout"),
		},
		Generate: GenerateConfig{
			BatchSize:   v.GetInt("generate.batch_size"),
			SnapshotDir: v.GetString("generate.snapshot_dir"),
		},
		Log: LogConfig{Level: v.GetString("log.level")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate - checks enumerations and bounds
func (c *Config) Validate() error {
	switch c.Session.Store {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("invalid session.store %q: want memory or sqlite", c.Session.Store)
	}
	switch c.Browser.Driver {
	case "http", "playwright", "selenium", "rod":
	default:
		return fmt.Errorf("invalid browser.driver %q: want http, playwright, selenium or rod", c.Browser.Driver)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Session.Max <= 0 {
		return fmt.Errorf("session.max must be positive")
	}
	if c.Generate.BatchSize <= 0 {
		return fmt.Errorf("generate.batch_size must be positive")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// AIReady reports whether AI enrichment can be used
func (c *Config) AIReady() bool {
	return c.AI.Enabled && c.AI.APIKey != ""
}

// NewLogger - a text logger on stderr at the configured level. stdout stays
// free for command output and the MCP stdio transport.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
