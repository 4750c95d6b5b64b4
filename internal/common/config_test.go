package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("WORKPAL_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_DataPathEnvOverride(t *testing.T) {
	t.Setenv("WORKPAL_DATA_PATH", "/var/lib/workpal")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Storage.Internal.Path != "/var/lib/workpal/internal" {
		t.Errorf("Storage.Internal.Path = %q, want %q", cfg.Storage.Internal.Path, "/var/lib/workpal/internal")
	}
	if cfg.Storage.User.Path != "/var/lib/workpal/user" {
		t.Errorf("Storage.User.Path = %q, want %q", cfg.Storage.User.Path, "/var/lib/workpal/user")
	}
}

func TestConfig_FinanceKeyEnvOverride(t *testing.T) {
	t.Setenv("WORKPAL_FINANCE_API_KEY", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.AlphaVantage.APIKey != "from-env" {
		t.Errorf("AlphaVantage.APIKey = %q, want %q", cfg.Clients.AlphaVantage.APIKey, "from-env")
	}
}

func TestConfig_AuthEnvOverrides(t *testing.T) {
	t.Setenv("WORKPAL_AUTH_JWT_SECRET", "secret-from-env")
	t.Setenv("WORKPAL_GOOGLE_CLIENT_ID", "goog-id-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Auth.JWTSecret != "secret-from-env" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "secret-from-env")
	}
	if cfg.Clients.Google.ClientID != "goog-id-env" {
		t.Errorf("Clients.Google.ClientID = %q, want %q", cfg.Clients.Google.ClientID, "goog-id-env")
	}
}

func TestConfig_LoadMissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil for missing file", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestConfig_LoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workpal.toml")
	content := `
environment = "production"

[server]
port = 3000

[documents]
required_points = 80
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Documents.RequiredPoints != 80 {
		t.Errorf("Documents.RequiredPoints = %d, want 80", cfg.Documents.RequiredPoints)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	// untouched sections keep defaults
	if cfg.Finance.LedgerFileName != "家計簿.xlsx" {
		t.Errorf("Finance.LedgerFileName = %q, want default", cfg.Finance.LedgerFileName)
	}
}

func TestMonitorConfig_GetInterval_Default(t *testing.T) {
	cfg := &MonitorConfig{}
	if d := cfg.GetInterval(); d != 5*time.Minute {
		t.Errorf("GetInterval() = %v, want 5m", d)
	}
}

func TestMonitorConfig_GetInterval_Configured(t *testing.T) {
	cfg := &MonitorConfig{Interval: "90s"}
	if d := cfg.GetInterval(); d != 90*time.Second {
		t.Errorf("GetInterval() = %v, want 90s", d)
	}
}

func TestMonitorConfig_GetSymbolDelay_InvalidFallsBack(t *testing.T) {
	cfg := &MonitorConfig{SymbolDelay: "not-a-duration"}
	if d := cfg.GetSymbolDelay(); d != time.Second {
		t.Errorf("GetSymbolDelay() = %v, want 1s (fallback for invalid)", d)
	}
}

func TestAuthConfig_GetTokenExpiry_Default(t *testing.T) {
	cfg := &AuthConfig{}
	if d := cfg.GetTokenExpiry(); d != 24*time.Hour {
		t.Errorf("GetTokenExpiry() = %v, want 24h", d)
	}
}

func TestConfig_NewDefault_DocumentFields(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Documents.PointsCell != "C17" {
		t.Errorf("Documents.PointsCell default = %q, want %q", cfg.Documents.PointsCell, "C17")
	}
	if cfg.Documents.RequiredPoints != 60 {
		t.Errorf("Documents.RequiredPoints default = %d, want 60", cfg.Documents.RequiredPoints)
	}
	if cfg.Documents.PointsFolder != "勉強会参加証明書" {
		t.Errorf("Documents.PointsFolder default = %q", cfg.Documents.PointsFolder)
	}
	if cfg.Documents.AttendanceFolder != "勤務表" {
		t.Errorf("Documents.AttendanceFolder default = %q", cfg.Documents.AttendanceFolder)
	}
}
