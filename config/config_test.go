package config

import (
	"os"
	"testing"
	"time"
)

// chdirTemp moves the test into an empty directory so no config.yaml or
// .env from the repository is picked up
func chdirTemp(t *testing.T) {
	t.Helper()
	originalDir, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(originalDir) })
	os.Chdir(t.TempDir())
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("TOOLFINDER_PRODUCTHUNT_TOKEN", "test-token")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Marketplace.Provider != ProviderProductHunt {
			t.Errorf("Marketplace.Provider = %s, want producthunt", cfg.Marketplace.Provider)
		}
		if cfg.ProductHunt.BaseURL != "https://api.producthunt.com/v2/api/graphql" {
			t.Errorf("ProductHunt.BaseURL = %s", cfg.ProductHunt.BaseURL)
		}
		if cfg.Fetch.MaxRecords != 100 {
			t.Errorf("Fetch.MaxRecords = %d, want 100", cfg.Fetch.MaxRecords)
		}
		if cfg.Fetch.MaxRequests != 5 {
			t.Errorf("Fetch.MaxRequests = %d, want 5", cfg.Fetch.MaxRequests)
		}
		if cfg.Fetch.PageDelay != time.Second {
			t.Errorf("Fetch.PageDelay = %v, want 1s", cfg.Fetch.PageDelay)
		}
		if cfg.Fetch.Timeout != 30*time.Second {
			t.Errorf("Fetch.Timeout = %v, want 30s", cfg.Fetch.Timeout)
		}
		if !cfg.Enrichment.Enabled {
			t.Error("Enrichment.Enabled = false, want true")
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("TOOLFINDER_SERVER_PORT", "9090")
		t.Setenv("TOOLFINDER_SERVER_ENVIRONMENT", "production")
		t.Setenv("TOOLFINDER_SERVER_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
		t.Setenv("TOOLFINDER_MARKETPLACE_PROVIDER", "g2")
		t.Setenv("TOOLFINDER_G2_TOKEN", "g2-token")
		t.Setenv("TOOLFINDER_G2_BASE_URL", "https://g2.internal/api/v1")
		t.Setenv("TOOLFINDER_FETCH_MAX_RECORDS", "40")
		t.Setenv("TOOLFINDER_FETCH_PAGE_DELAY", "250ms")
		t.Setenv("TOOLFINDER_ENRICHMENT_ENABLED", "false")
		t.Setenv("TOOLFINDER_LOG_FORMAT", "console")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example.com" {
			t.Errorf("Server.AllowedOrigins = %v, want two origins", cfg.Server.AllowedOrigins)
		}
		if cfg.Marketplace.Provider != ProviderG2 {
			t.Errorf("Marketplace.Provider = %s, want g2", cfg.Marketplace.Provider)
		}
		if cfg.G2.Token != "g2-token" {
			t.Errorf("G2.Token = %s, want g2-token", cfg.G2.Token)
		}
		if cfg.G2.BaseURL != "https://g2.internal/api/v1" {
			t.Errorf("G2.BaseURL = %s", cfg.G2.BaseURL)
		}
		if cfg.Fetch.MaxRecords != 40 {
			t.Errorf("Fetch.MaxRecords = %d, want 40", cfg.Fetch.MaxRecords)
		}
		if cfg.Fetch.PageDelay != 250*time.Millisecond {
			t.Errorf("Fetch.PageDelay = %v, want 250ms", cfg.Fetch.PageDelay)
		}
		if cfg.Enrichment.Enabled {
			t.Error("Enrichment.Enabled = true, want false")
		}
		if cfg.Log.Format != "console" {
			t.Errorf("Log.Format = %s, want console", cfg.Log.Format)
		}
	})

	t.Run("fails validation when token is missing", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("TOOLFINDER_PRODUCTHUNT_TOKEN", "")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing token")
		}
		want := "invalid configuration: Product Hunt token is required (set TOOLFINDER_PRODUCTHUNT_TOKEN)"
		if err.Error() != want {
			t.Errorf("Load() error = %v, want %q", err, want)
		}
	})

	t.Run("fails validation for unknown provider", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("TOOLFINDER_MARKETPLACE_PROVIDER", "capterra")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for unknown provider")
		}
	})

	t.Run("reads token from .env file", func(t *testing.T) {
		chdirTemp(t)
		os.Unsetenv("TOOLFINDER_PRODUCTHUNT_TOKEN")
		t.Cleanup(func() { os.Unsetenv("TOOLFINDER_PRODUCTHUNT_TOKEN") })

		if err := os.WriteFile(".env", []byte("TOOLFINDER_PRODUCTHUNT_TOKEN=from-dotenv\n"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.ProductHunt.Token != "from-dotenv" {
			t.Errorf("ProductHunt.Token = %s, want from-dotenv", cfg.ProductHunt.Token)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		chdirTemp(t)

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		chdirTemp(t)

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		for _, k := range []string{"TEST_VAR_1", "TEST_VAR_2", "TEST_COMMENTED"} {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Unsetenv(k) })
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("TEST_OVERRIDE", "existing-value")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func validConfig() *Config {
	return &Config{
		Marketplace: MarketplaceConfig{Provider: ProviderProductHunt},
		ProductHunt: ProductHuntConfig{Token: "test-token"},
		Fetch: FetchConfig{
			MaxRecords:  100,
			MaxRequests: 5,
			PageSize:    20,
			PageDelay:   time.Second,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("validates g2 provider with token", func(t *testing.T) {
		cfg := validConfig()
		cfg.Marketplace.Provider = ProviderG2
		cfg.G2.Token = "g2-token"

		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails for g2 provider without token", func(t *testing.T) {
		cfg := validConfig()
		cfg.Marketplace.Provider = ProviderG2

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for missing G2 token")
		}
	})

	t.Run("fails for non-positive fetch caps", func(t *testing.T) {
		mutations := map[string]func(*Config){
			"max_records":  func(c *Config) { c.Fetch.MaxRecords = 0 },
			"max_requests": func(c *Config) { c.Fetch.MaxRequests = -1 },
			"page_size":    func(c *Config) { c.Fetch.PageSize = 0 },
			"page_delay":   func(c *Config) { c.Fetch.PageDelay = -time.Second },
		}
		for name, mutate := range mutations {
			cfg := validConfig()
			mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Errorf("%s: validate() error = nil, want error", name)
			}
		}
	})
}
