// Package config loads RegLand settings from defaults, an optional YAML file
// and REGLAND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/regland/regland/pkg/model"
)

const (
	EnvPrefix = "REGLAND"
	// DataEnv names the data directory holding the database and expression table.
	DataEnv        = "REGLAND_DATA"
	DefaultDataDir = "./data"
	DefaultFile    = "regland.yaml"

	ExpressionSourceFile = "file"
	ExpressionSourceDB   = "db"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Expression ExpressionConfig `mapstructure:"expression" yaml:"expression"`
	Query      QueryConfig      `mapstructure:"query" yaml:"query"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Path         string `mapstructure:"path" yaml:"path"`
	ReadOnly     bool   `mapstructure:"read_only" yaml:"read_only"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
}

// CacheConfig sizes the combined-data and GET response caches.
type CacheConfig struct {
	TTL  time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Size int           `mapstructure:"size" yaml:"size"`
}

type ExpressionConfig struct {
	Path   string        `mapstructure:"path" yaml:"path"`
	Source string        `mapstructure:"source" yaml:"source"`
	TTL    time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Watch  bool          `mapstructure:"watch" yaml:"watch"`
}

type QueryConfig struct {
	EnhancerLimit int `mapstructure:"enhancer_limit" yaml:"enhancer_limit"`
	GWASLimit     int `mapstructure:"gwas_limit" yaml:"gwas_limit"`
	CTCFLimit     int `mapstructure:"ctcf_limit" yaml:"ctcf_limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Limits converts the query section for model.NewStore.
func (q QueryConfig) Limits() model.Limits {
	return model.Limits{Enhancers: q.EnhancerLimit, GWAS: q.GWASLimit, CTCF: q.CTCFLimit}
}

// DataDir returns $REGLAND_DATA or ./data.
func DataDir() string {
	if dir := strings.TrimSpace(os.Getenv(DataEnv)); dir != "" {
		return dir
	}
	return DefaultDataDir
}

func setDefaults(v *viper.Viper) {
	data := DataDir()
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("database.path", filepath.Join(data, "regland.sqlite"))
	v.SetDefault("database.read_only", true)
	v.SetDefault("database.max_open_conns", 8)

	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.size", 512)

	v.SetDefault("expression.path", filepath.Join(data, "expression_tpm.tsv"))
	v.SetDefault("expression.source", ExpressionSourceFile)
	v.SetDefault("expression.ttl", time.Hour)
	v.SetDefault("expression.watch", false)

	v.SetDefault("query.enhancer_limit", model.DefaultEnhancerLimit)
	v.SetDefault("query.gwas_limit", model.DefaultGWASLimit)
	v.SetDefault("query.ctcf_limit", model.DefaultCTCFLimit)

	v.SetDefault("log.level", "info")
}

// NewViper builds a viper instance with defaults and env binding, then reads
// path. An empty path looks for regland.yaml in the working directory and
// the data directory; a missing file there is not an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(strings.TrimSuffix(DefaultFile, filepath.Ext(DefaultFile)))
	v.AddConfigPath(".")
	v.AddConfigPath(DataDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Decode unmarshals and validates the current settings of v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is NewViper followed by Decode.
func Load(path string) (*Config, *viper.Viper, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func (c *Config) normalize() {
	c.Expression.Source = strings.ToLower(strings.TrimSpace(c.Expression.Source))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Database.Path = strings.TrimSpace(c.Database.Path)
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr cannot be empty"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path cannot be empty"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size))
	}
	switch c.Expression.Source {
	case ExpressionSourceFile, ExpressionSourceDB:
	default:
		errs = append(errs, fmt.Errorf("expression.source must be %q or %q, got %q", ExpressionSourceFile, ExpressionSourceDB, c.Expression.Source))
	}
	if c.Expression.Watch && c.Expression.Source != ExpressionSourceFile {
		errs = append(errs, errors.New("expression.watch requires expression.source=file"))
	}
	for key, n := range map[string]int{
		"query.enhancer_limit": c.Query.EnhancerLimit,
		"query.gwas_limit":     c.Query.GWASLimit,
		"query.ctcf_limit":     c.Query.CTCFLimit,
	} {
		if n < 0 || n > model.MaxQueryLimit {
			errs = append(errs, fmt.Errorf("%s must be within 0..%d, got %d", key, model.MaxQueryLimit, n))
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	return errors.Join(errs...)
}
