package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/gemtofu/internal/api"
	"github.com/mcoot/gemtofu/internal/factory"
	"github.com/mcoot/gemtofu/internal/server"
	filestorage "github.com/mcoot/gemtofu/internal/storage/file"
	redisstorage "github.com/mcoot/gemtofu/internal/storage/redis"
)

// EnvPrefix prefixes every environment variable the CLI reads
const EnvPrefix = "GEMTOFU"

// Config holds CLI configuration. It is fixed once the command starts.
type Config struct {
	Listen          string        `mapstructure:"listen"`
	Host            string        `mapstructure:"host"`
	DocRoot         string        `mapstructure:"doc_root"`
	DataDir         string        `mapstructure:"data_dir"`
	CertFile        string        `mapstructure:"cert_file"`
	KeyFile         string        `mapstructure:"key_file"`
	IOTimeout       time.Duration `mapstructure:"io_timeout"`
	MaxRequestBytes int           `mapstructure:"max_request_bytes"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`

	Storage  string        `mapstructure:"storage"`
	RedisURL string        `mapstructure:"redis_url"`
	GameTTL  time.Duration `mapstructure:"game_ttl"`

	AdminAddr string `mapstructure:"admin_addr"`

	LogLevel string `mapstructure:"log_level"`
	Output   string `mapstructure:"output"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	srv := server.DefaultConfig()
	return &Config{
		Listen:          srv.Addr,
		Host:            "localhost",
		DocRoot:         "docroot",
		DataDir:         "data",
		CertFile:        "cert.pem",
		KeyFile:         "key.pem",
		IOTimeout:       srv.IOTimeout,
		MaxRequestBytes: srv.MaxRequestBytes,
		RateLimit:       srv.Limiter.Rate,
		RateBurst:       srv.Limiter.Burst,
		Storage:         factory.StorageTypeFile,
		RedisURL:        redisstorage.DefaultConfig().URL,
		AdminAddr:       api.DefaultServerConfig().Addr,
		LogLevel:        "info",
		Output:          "text",
	}
}

// defaults flattens DefaultConfig into viper keys
func defaults() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"listen":            d.Listen,
		"host":              d.Host,
		"doc_root":          d.DocRoot,
		"data_dir":          d.DataDir,
		"cert_file":         d.CertFile,
		"key_file":          d.KeyFile,
		"io_timeout":        d.IOTimeout,
		"max_request_bytes": d.MaxRequestBytes,
		"rate_limit":        d.RateLimit,
		"rate_burst":        d.RateBurst,
		"storage":           d.Storage,
		"redis_url":         d.RedisURL,
		"game_ttl":          d.GameTTL,
		"admin_addr":        d.AdminAddr,
		"log_level":         d.LogLevel,
		"output":            d.Output,
	}
}

// LoadConfig resolves configuration from, in increasing precedence: defaults,
// the YAML file at configFile (if set), GEMTOFU_* environment variables and
// flags that were explicitly set. Flag names use dashes for underscores.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		known := defaults()
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, ok := known[key]; !ok {
				return
			}
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage {
	case factory.StorageTypeMemory, factory.StorageTypeFile, factory.StorageTypeRedis:
	default:
		return fmt.Errorf("invalid storage %q: must be memory, file or redis", c.Storage)
	}
	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("invalid output %q: must be text or json", c.Output)
	}
	if c.MaxRequestBytes <= 0 {
		return errors.New("max_request_bytes must be positive")
	}
	if c.IOTimeout <= 0 {
		return errors.New("io_timeout must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// NewLogger returns the JSON logger for the configured level
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// ServerConfig returns the Gemini server settings
func (c *Config) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	cfg.Addr = c.Listen
	cfg.IOTimeout = c.IOTimeout
	cfg.MaxRequestBytes = c.MaxRequestBytes
	cfg.Limiter.Rate = c.RateLimit
	cfg.Limiter.Burst = c.RateBurst
	return cfg
}

// PublicHost is the "host:port" used in shareable links. A host without a
// port borrows the port the Gemini server listens on.
func (c *Config) PublicHost() string {
	if _, _, err := net.SplitHostPort(c.Host); err == nil {
		return c.Host
	}
	_, port, err := net.SplitHostPort(c.Listen)
	if err != nil || port == "" {
		return c.Host
	}
	return net.JoinHostPort(c.Host, port)
}

// AdminConfig returns the admin API server settings
func (c *Config) AdminConfig() api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Addr = c.AdminAddr
	return cfg
}

// AdminURL is the base URL of the admin API
func (c *Config) AdminURL() string {
	if strings.HasPrefix(c.AdminAddr, "http://") || strings.HasPrefix(c.AdminAddr, "https://") {
		return c.AdminAddr
	}
	return "http://" + c.AdminAddr
}

// FactoryConfig returns the application wiring settings
func (c *Config) FactoryConfig(logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:      logger,
		StorageType: c.Storage,
	}
	switch c.Storage {
	case factory.StorageTypeFile:
		fileCfg := filestorage.DefaultConfig(c.DataDir)
		fc.FileConfig = &fileCfg
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.GameTTL = c.GameTTL
		fc.RedisConfig = &redisCfg
	}
	return fc
}
