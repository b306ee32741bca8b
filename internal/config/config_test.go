package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8000" {
		t.Errorf("Expected port 8000, got %s", cfg.Server.Port)
	}
	if cfg.Store.Driver != StoreDriverFile {
		t.Errorf("Expected file store, got %s", cfg.Store.Driver)
	}
	if cfg.Store.ArticlesPath() != filepath.Join("data", "articles.json") {
		t.Errorf("Unexpected articles path %s", cfg.Store.ArticlesPath())
	}
	if cfg.ImageHost.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.ImageHost.Timeout)
	}
	if len(cfg.ImageHost.DuplicateCodes) != 1 || cfg.ImageHost.DuplicateCodes[0] != 101 {
		t.Errorf("Expected duplicate codes [101], got %v", cfg.ImageHost.DuplicateCodes)
	}
	if cfg.Server.AllowedOrigins != nil {
		t.Errorf("Expected no origin list, got %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("IMAGE_HOST_TIMEOUT", "5s")
	t.Setenv("IMAGE_HOST_DUPLICATE_CODES", "101, 409")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("MAX_UPLOAD_SIZE", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Store.Driver != StoreDriverPostgres {
		t.Errorf("Expected postgres store, got %s", cfg.Store.Driver)
	}
	if cfg.ImageHost.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.ImageHost.Timeout)
	}
	if len(cfg.ImageHost.DuplicateCodes) != 2 || cfg.ImageHost.DuplicateCodes[1] != 409 {
		t.Errorf("Expected duplicate codes [101 409], got %v", cfg.ImageHost.DuplicateCodes)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 origins, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.ImageHost.MaxUploadSize != 1024 {
		t.Errorf("Expected max upload 1024, got %d", cfg.ImageHost.MaxUploadSize)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("IMAGE_HOST_TIMEOUT", "soon")
	t.Setenv("IMAGE_HOST_DUPLICATE_CODES", "101,abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ImageHost.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout, got %v", cfg.ImageHost.Timeout)
	}
	if len(cfg.ImageHost.DuplicateCodes) != 1 {
		t.Errorf("Expected default duplicate codes, got %v", cfg.ImageHost.DuplicateCodes)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:     StoreConfig{Driver: StoreDriverFile, ArticlesFile: "a.json", ImagesFile: "i.json"},
			Database:  DatabaseConfig{Host: "localhost", Name: "articles"},
			ImageHost: ImageHostConfig{URL: "https://host.test/upload", Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid file store", func(c *Config) {}, false},
		{"valid postgres store", func(c *Config) { c.Store.Driver = StoreDriverPostgres }, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"missing images file", func(c *Config) { c.Store.ImagesFile = "" }, true},
		{"postgres without host", func(c *Config) { c.Store.Driver = StoreDriverPostgres; c.Database.Host = "" }, true},
		{"postgres without name", func(c *Config) { c.Store.Driver = StoreDriverPostgres; c.Database.Name = "" }, true},
		{"missing host url", func(c *Config) { c.ImageHost.URL = "" }, true},
		{"zero timeout", func(c *Config) { c.ImageHost.Timeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
