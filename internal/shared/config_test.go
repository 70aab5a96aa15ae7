package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "https://www.googleapis.com/sj/v1/" {
			t.Errorf("expected default base URL, got %s", config.API.BaseURL)
		}

		if config.API.LoginURL != "https://www.google.com/accounts/ClientLogin" {
			t.Errorf("expected default login URL, got %s", config.API.LoginURL)
		}

		if config.API.MaxAuthRetries != 1 {
			t.Errorf("expected max_auth_retries 1, got %d", config.API.MaxAuthRetries)
		}

		if config.API.Timeout() != 8*time.Second {
			t.Errorf("expected 8s timeout, got %v", config.API.Timeout())
		}

		if config.Server.Addr() != "127.0.0.1:8090" {
			t.Errorf("expected server addr 127.0.0.1:8090, got %s", config.Server.Addr())
		}

		if config.Credentials.Email != "" || config.Credentials.Password != "" {
			t.Error("expected empty default credentials")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.API.BaseURL != DefaultConfig().API.BaseURL {
			t.Errorf("created config base URL doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials]
email = "user@example.com"
password = "hunter2"

[api]
base_url = "http://localhost:9090/sj/v1/"
max_auth_retries = 2

[database]
path = "/custom/history.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Email != "user@example.com" {
			t.Errorf("expected email user@example.com, got %s", config.Credentials.Email)
		}

		if config.API.BaseURL != "http://localhost:9090/sj/v1/" {
			t.Errorf("expected overridden base URL, got %s", config.API.BaseURL)
		}

		if config.API.MaxAuthRetries != 2 {
			t.Errorf("expected max_auth_retries 2, got %d", config.API.MaxAuthRetries)
		}

		if config.API.LoginURL != "https://www.google.com/accounts/ClientLogin" {
			t.Errorf("expected unset login URL to keep default, got %s", config.API.LoginURL)
		}

		if config.Database.Path != "/custom/history.db" {
			t.Errorf("expected database path /custom/history.db, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[credentials\nemail ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv Overrides Credentials", func(t *testing.T) {
		t.Setenv("GMUSIC_EMAIL", "env@example.com")
		t.Setenv("GMUSIC_PASSWORD", "from-env")
		t.Setenv("GMUSIC_BASE_URL", "http://env.local/")

		config := DefaultConfig()
		config.Credentials.Email = "file@example.com"

		if err := ApplyEnv(config); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.Email != "env@example.com" {
			t.Errorf("expected env email, got %s", config.Credentials.Email)
		}
		if config.Credentials.Password != "from-env" {
			t.Errorf("expected env password, got %s", config.Credentials.Password)
		}
		if config.API.BaseURL != "http://env.local/" {
			t.Errorf("expected env base URL, got %s", config.API.BaseURL)
		}
	})

	t.Run("ApplyEnv Keeps Values When Unset", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Email = "file@example.com"

		if err := ApplyEnv(config); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.Email != "file@example.com" {
			t.Errorf("expected file email to survive, got %s", config.Credentials.Email)
		}
	})
}
