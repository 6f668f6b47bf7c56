package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ligustah/stacfetch/pkg/provider"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.OutputDir != "data" {
		t.Errorf("expected default output dir data, got %s", cfg.OutputDir)
	}
	if cfg.BufferSize != 1024*1024 {
		t.Errorf("expected default buffer size 1MiB, got %d", cfg.BufferSize)
	}
	if cfg.Catalog.Timeout != 30*time.Second {
		t.Errorf("expected default catalog timeout 30s, got %v", cfg.Catalog.Timeout)
	}
	if cfg.Retry.Attempts != 5 {
		t.Errorf("expected default retry attempts 5, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != time.Second {
		t.Errorf("expected default retry backoff 1s, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 30*time.Second {
		t.Errorf("expected default retry max backoff 30s, got %v", cfg.Retry.MaxBackoff)
	}
	if cfg.Copernicus.Endpoint != "https://eodata.dataspace.copernicus.eu" {
		t.Errorf("unexpected copernicus endpoint %s", cfg.Copernicus.Endpoint)
	}
	if !cfg.Element84.Anonymous {
		t.Error("expected element84 to be anonymous by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
output_dir: /srv/imagery
progress: true
buffer_size: 4MiB
catalog:
  timeout: 10s
retry:
  attempts: 10
  backoff: 2s
  max_backoff: 60s
copernicus:
  profile: cdse
  path_style: false
element84:
  anonymous: false
  bucket_url: file:///srv/mirror/{bucket}
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.OutputDir != "/srv/imagery" {
		t.Errorf("expected output dir /srv/imagery, got %s", cfg.OutputDir)
	}
	if cfg.PlanFile != "plan.json" {
		t.Errorf("expected default plan file, got %s", cfg.PlanFile)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.BufferSize != 4*1024*1024 {
		t.Errorf("expected buffer size 4MiB, got %d", cfg.BufferSize)
	}
	if cfg.Catalog.Timeout != 10*time.Second {
		t.Errorf("expected catalog timeout 10s, got %v", cfg.Catalog.Timeout)
	}
	if cfg.Retry.Attempts != 10 {
		t.Errorf("expected retry attempts 10, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 2*time.Second {
		t.Errorf("expected retry backoff 2s, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 60*time.Second {
		t.Errorf("expected retry max backoff 60s, got %v", cfg.Retry.MaxBackoff)
	}

	if cfg.Copernicus.Profile != "cdse" {
		t.Errorf("expected copernicus profile cdse, got %s", cfg.Copernicus.Profile)
	}
	if cfg.Copernicus.PathStyle {
		t.Error("expected copernicus path style disabled")
	}
	if cfg.Copernicus.Endpoint != "https://eodata.dataspace.copernicus.eu" {
		t.Errorf("expected default copernicus endpoint kept, got %s", cfg.Copernicus.Endpoint)
	}
	if cfg.Element84.Anonymous {
		t.Error("expected element84 anonymous disabled")
	}
	if cfg.Element84.BucketURL != "file:///srv/mirror/{bucket}" {
		t.Errorf("unexpected element84 bucket url %s", cfg.Element84.BucketURL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STACFETCH_OUTPUT_DIR", "out")
	t.Setenv("STACFETCH_BUFFER_SIZE", "1MB")
	t.Setenv("STACFETCH_PROGRESS", "true")
	t.Setenv("STACFETCH_CATALOG_TIMEOUT", "5s")
	t.Setenv("STACFETCH_RETRY_ATTEMPTS", "3")
	t.Setenv("STACFETCH_RETRY_BACKOFF", "500ms")
	t.Setenv("STACFETCH_RETRY_MAX_BACKOFF", "10s")
	t.Setenv("STACFETCH_COPERNICUS_ENDPOINT", "http://localhost:9000")
	t.Setenv("STACFETCH_COPERNICUS_PROFILE", "")
	t.Setenv("STACFETCH_ELEMENT84_ANONYMOUS", "false")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.OutputDir != "out" {
		t.Errorf("expected output dir out, got %s", cfg.OutputDir)
	}
	if cfg.BufferSize != 1000*1000 {
		t.Errorf("expected buffer size 1MB, got %d", cfg.BufferSize)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Catalog.Timeout != 5*time.Second {
		t.Errorf("expected catalog timeout 5s, got %v", cfg.Catalog.Timeout)
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("expected retry attempts 3, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 500*time.Millisecond {
		t.Errorf("expected retry backoff 500ms, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 10*time.Second {
		t.Errorf("expected retry max backoff 10s, got %v", cfg.Retry.MaxBackoff)
	}
	if cfg.Copernicus.Endpoint != "http://localhost:9000" {
		t.Errorf("unexpected copernicus endpoint %s", cfg.Copernicus.Endpoint)
	}
	if cfg.Copernicus.Profile != "" {
		t.Errorf("expected copernicus profile cleared, got %s", cfg.Copernicus.Profile)
	}
	if cfg.Element84.Anonymous {
		t.Error("expected element84 anonymous disabled")
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("STACFETCH_ELEMENT84_PATH_STYLE", "sometimes")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for invalid bool")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing output dir",
			modify:  func(c *Config) { c.OutputDir = "" },
			wantErr: true,
		},
		{
			name:    "missing plan file",
			modify:  func(c *Config) { c.PlanFile = "" },
			wantErr: true,
		},
		{
			name:    "invalid buffer size",
			modify:  func(c *Config) { c.BufferSize = 0 },
			wantErr: true,
		},
		{
			name:    "invalid timeout",
			modify:  func(c *Config) { c.Catalog.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "missing catalog url",
			modify:  func(c *Config) { c.Element84.CatalogURL = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.OutputDir = "/data"

	override := Config{
		PlanFile: "plans/today.json",
		// Leave other fields at zero values
	}

	merged := base.Merge(override)

	if merged.OutputDir != "/data" {
		t.Errorf("expected OutputDir preserved, got %s", merged.OutputDir)
	}
	if merged.BufferSize != 1024*1024 {
		t.Errorf("expected BufferSize preserved, got %d", merged.BufferSize)
	}
	if merged.PlanFile != "plans/today.json" {
		t.Errorf("expected PlanFile overridden, got %s", merged.PlanFile)
	}
}

func TestProviderSettings(t *testing.T) {
	cfg := Default()
	if got := cfg.Provider(provider.Copernicus); got.Collection != "SENTINEL-2" {
		t.Errorf("unexpected copernicus settings %+v", got)
	}
	if got := cfg.Provider(provider.Element84); got.Collection != "sentinel-2-c1-l2a" {
		t.Errorf("unexpected element84 settings %+v", got)
	}

	opts := cfg.HTTPOptions()
	if opts.Timeout != 30*time.Second || opts.RetryAttempts != 5 {
		t.Errorf("unexpected http options %+v", opts)
	}
}

func TestDefaultPath(t *testing.T) {
	if path, ok := DefaultPath(); ok {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("DefaultPath returned %s which does not exist", path)
		}
	}
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
