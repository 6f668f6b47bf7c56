package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	sfhttp "github.com/ligustah/stacfetch/internal/http"
	"github.com/ligustah/stacfetch/internal/progress"
	"github.com/ligustah/stacfetch/pkg/provider"
)

// FileName is the config file looked up in the XDG config directories.
const FileName = "stacfetch/config.yaml"

// Config defines configuration for the stacfetch CLI.
type Config struct {
	OutputDir  string
	PlanFile   string
	PlanBucket string // gocloud bucket URL; when set PlanFile is a key in it
	Progress   bool
	Verbose    bool
	BufferSize int64
	Catalog    CatalogConfig
	Retry      RetryConfig
	Copernicus provider.Settings
	Element84  provider.Settings
}

// CatalogConfig configures catalog requests.
type CatalogConfig struct {
	Timeout time.Duration
}

// RetryConfig defines retry behavior of catalog requests.
type RetryConfig struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		OutputDir:  "data",
		PlanFile:   "plan.json",
		BufferSize: 1024 * 1024, // 1MiB
		Catalog: CatalogConfig{
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			Attempts:   5,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
		Copernicus: provider.DefaultSettings(provider.Copernicus),
		Element84:  provider.DefaultSettings(provider.Element84),
	}
}

// DefaultPath returns the first stacfetch/config.yaml found in the XDG
// config directories.
func DefaultPath() (string, bool) {
	path, err := xdg.SearchConfigFile(FileName)
	if err != nil {
		return "", false
	}
	return path, true
}

// Provider returns the settings for kind.
func (c *Config) Provider(kind provider.Kind) provider.Settings {
	switch kind {
	case provider.Copernicus:
		return c.Copernicus
	case provider.Element84:
		return c.Element84
	default:
		return provider.Settings{}
	}
}

// HTTPOptions returns the catalog client options.
func (c *Config) HTTPOptions() sfhttp.Options {
	opts := sfhttp.DefaultOptions()
	opts.Timeout = c.Catalog.Timeout
	opts.RetryAttempts = c.Retry.Attempts
	opts.RetryBackoff = c.Retry.Backoff
	opts.RetryMaxBackoff = c.Retry.MaxBackoff
	return opts
}

// yamlConfig is used for YAML unmarshaling with string sizes and durations.
type yamlConfig struct {
	OutputDir  string             `yaml:"output_dir"`
	PlanFile   string             `yaml:"plan_file"`
	PlanBucket string             `yaml:"plan_bucket"`
	Progress   bool               `yaml:"progress"`
	Verbose    bool               `yaml:"verbose"`
	BufferSize string             `yaml:"buffer_size"`
	Catalog    yamlCatalogConfig  `yaml:"catalog"`
	Retry      yamlRetryConfig    `yaml:"retry"`
	Copernicus yamlProviderConfig `yaml:"copernicus"`
	Element84  yamlProviderConfig `yaml:"element84"`
}

type yamlCatalogConfig struct {
	Timeout string `yaml:"timeout"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// yamlProviderConfig uses pointers so an explicit false can override a
// default of true.
type yamlProviderConfig struct {
	CatalogURL       *string `yaml:"catalog_url"`
	Collection       *string `yaml:"collection"`
	Endpoint         *string `yaml:"endpoint"`
	Region           *string `yaml:"region"`
	Profile          *string `yaml:"profile"`
	Anonymous        *bool   `yaml:"anonymous"`
	PathStyle        *bool   `yaml:"path_style"`
	StripGetObjectID *bool   `yaml:"strip_get_object_id"`
	BucketURL        *string `yaml:"bucket_url"`
}

func (y yamlProviderConfig) apply(s *provider.Settings) {
	setString(&s.CatalogURL, y.CatalogURL)
	setString(&s.Collection, y.Collection)
	setString(&s.Endpoint, y.Endpoint)
	setString(&s.Region, y.Region)
	setString(&s.Profile, y.Profile)
	setString(&s.BucketURL, y.BucketURL)
	setBool(&s.Anonymous, y.Anonymous)
	setBool(&s.PathStyle, y.PathStyle)
	setBool(&s.StripGetObjectID, y.StripGetObjectID)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.OutputDir != "" {
		cfg.OutputDir = yc.OutputDir
	}
	if yc.PlanFile != "" {
		cfg.PlanFile = yc.PlanFile
	}
	cfg.PlanBucket = yc.PlanBucket
	cfg.Progress = yc.Progress
	cfg.Verbose = yc.Verbose
	if yc.BufferSize != "" {
		size, err := progress.ParseBytes(yc.BufferSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse buffer_size: %w", err)
		}
		cfg.BufferSize = size
	}
	if yc.Catalog.Timeout != "" {
		d, err := time.ParseDuration(yc.Catalog.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse catalog.timeout: %w", err)
		}
		cfg.Catalog.Timeout = d
	}
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}
	yc.Copernicus.apply(&cfg.Copernicus)
	yc.Element84.apply(&cfg.Element84)

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the STACFETCH_ prefix; provider settings use
// STACFETCH_COPERNICUS_ and STACFETCH_ELEMENT84_.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("STACFETCH_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("STACFETCH_PLAN_FILE"); v != "" {
		c.PlanFile = v
	}
	if v := os.Getenv("STACFETCH_PLAN_BUCKET"); v != "" {
		c.PlanBucket = v
	}
	if v := os.Getenv("STACFETCH_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("STACFETCH_VERBOSE"); v != "" {
		c.Verbose = v == "true" || v == "1"
	}
	if v := os.Getenv("STACFETCH_BUFFER_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse STACFETCH_BUFFER_SIZE: %w", err)
		}
		c.BufferSize = size
	}
	if v := os.Getenv("STACFETCH_CATALOG_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse STACFETCH_CATALOG_TIMEOUT: %w", err)
		}
		c.Catalog.Timeout = d
	}
	if v := os.Getenv("STACFETCH_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse STACFETCH_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("STACFETCH_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse STACFETCH_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("STACFETCH_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse STACFETCH_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	if err := loadProviderEnv("STACFETCH_COPERNICUS_", &c.Copernicus); err != nil {
		return err
	}
	return loadProviderEnv("STACFETCH_ELEMENT84_", &c.Element84)
}

func loadProviderEnv(prefix string, s *provider.Settings) error {
	strs := map[string]*string{
		"CATALOG_URL": &s.CatalogURL,
		"COLLECTION":  &s.Collection,
		"ENDPOINT":    &s.Endpoint,
		"REGION":      &s.Region,
		"PROFILE":     &s.Profile,
		"BUCKET_URL":  &s.BucketURL,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(prefix + name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"ANONYMOUS":           &s.Anonymous,
		"PATH_STYLE":          &s.PathStyle,
		"STRIP_GET_OBJECT_ID": &s.StripGetObjectID,
	}
	for name, dst := range bools {
		if v := os.Getenv(prefix + name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("parse %s%s: %w", prefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("config: output_dir is required")
	}
	if c.PlanFile == "" {
		return errors.New("config: plan_file is required")
	}
	if c.BufferSize <= 0 {
		return errors.New("config: buffer_size must be positive")
	}
	if c.Catalog.Timeout <= 0 {
		return errors.New("config: catalog.timeout must be positive")
	}
	if c.Retry.Attempts < 0 {
		return errors.New("config: retry.attempts must not be negative")
	}
	for _, kind := range provider.Kinds() {
		s := c.Provider(kind)
		if s.CatalogURL == "" || s.Collection == "" {
			return fmt.Errorf("config: %s.catalog_url and %s.collection are required", kind.Name(), kind.Name())
		}
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored. Provider settings are not merged.
func (c Config) Merge(override Config) Config {
	if override.OutputDir != "" {
		c.OutputDir = override.OutputDir
	}
	if override.PlanFile != "" {
		c.PlanFile = override.PlanFile
	}
	if override.PlanBucket != "" {
		c.PlanBucket = override.PlanBucket
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Verbose {
		c.Verbose = override.Verbose
	}
	if override.BufferSize != 0 {
		c.BufferSize = override.BufferSize
	}
	if override.Catalog.Timeout != 0 {
		c.Catalog.Timeout = override.Catalog.Timeout
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}
