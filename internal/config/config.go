package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultBaseURL  = "http://localhost:8080"
	DefaultTimeout  = 60 * time.Second
	DefaultLogLevel = "info"
)

// Settings is the resolved client configuration.
type Settings struct {
	BaseURL      string
	Timeout      time.Duration
	CacheEnabled bool
	LogLevel     string
	LogPath      string
	SentryDSN    string
}

// Load resolves settings from defaults, the TOML file at path and the environment,
// in increasing order of precedence. A .env file in the working directory is loaded first.
func Load(path string) (Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("failed to load .env", "error", err)
	}

	fileCfg, err := LoadConfig(path)
	if err != nil {
		return Settings{}, err
	}
	s, err := Resolve(fileCfg)
	if err != nil {
		return Settings{}, err
	}
	return applyEnv(s)
}

// Resolve merges the file config over the defaults.
func Resolve(fileCfg FileConfig) (Settings, error) {
	s := Settings{
		BaseURL:  DefaultBaseURL,
		Timeout:  DefaultTimeout,
		LogLevel: DefaultLogLevel,
		LogPath:  DefaultLogPath(),
	}
	if v := fileCfg.Server.BaseURL; v != nil {
		s.BaseURL = *v
	}
	if v := fileCfg.Server.Timeout; v != nil {
		d, err := time.ParseDuration(*v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid server.timeout %q: %w", *v, err)
		}
		s.Timeout = d
	}
	if v := fileCfg.Cache.Enabled; v != nil {
		s.CacheEnabled = *v
	}
	if v := fileCfg.Log.Level; v != nil {
		s.LogLevel = *v
	}
	if v := fileCfg.Log.Path; v != nil {
		s.LogPath = *v
	}
	if v := fileCfg.Log.SentryDSN; v != nil {
		s.SentryDSN = *v
	}
	return s, nil
}

func applyEnv(s Settings) (Settings, error) {
	s.BaseURL = envString("CHALLENGER_BASE_URL", s.BaseURL)
	s.LogLevel = envString("CHALLENGER_LOG_LEVEL", s.LogLevel)
	s.LogPath = envString("CHALLENGER_LOG_PATH", s.LogPath)
	s.SentryDSN = envString("SENTRY_DSN", s.SentryDSN)
	if v := strings.TrimSpace(os.Getenv("CHALLENGER_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid CHALLENGER_TIMEOUT %q: %w", v, err)
		}
		s.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv("CHALLENGER_CACHE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid CHALLENGER_CACHE %q: %w", v, err)
		}
		s.CacheEnabled = b
	}
	return s, nil
}

// Validate checks the resolved settings.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.BaseURL) == "" {
		return fmt.Errorf("--base-url must not be empty")
	}
	if s.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	return nil
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}
