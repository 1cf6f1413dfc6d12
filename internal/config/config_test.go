package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"medibook/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("MEDIBOOK_DB_PATH", filepath.Join(tmpDir, "medibook.db"))

	yamlContent := `
app:
  timezone: "Europe/Moscow"
database:
  path: "${MEDIBOOK_DB_PATH}"
policy:
  cancellation_window: 12h
sweeper:
  enabled: true
  interval: 90s
resources:
  - id: 1
    name: "Central clinic"
providers:
  - kind: appointment
    id: 10
    name: "Dr. House"
    default_fee: 2500
    resources: [1]
  - kind: lab_test
    id: 10
    name: "Complete blood count"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected default driver %s, got %s", DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Database.Path != filepath.Join(tmpDir, "medibook.db") {
		t.Errorf("expected expanded database path, got %s", cfg.Database.Path)
	}
	if cfg.Policy.CancellationWindow != 12*time.Hour {
		t.Errorf("expected cancellation window 12h, got %s", cfg.Policy.CancellationWindow)
	}
	if cfg.Sweeper.Interval != 90*time.Second {
		t.Errorf("expected sweeper interval 90s, got %s", cfg.Sweeper.Interval)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[0].ResourceIDs[0] != 1 {
		t.Errorf("expected 2 providers with resource 1 on the first, got %+v", cfg.Providers)
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Moscow" {
		t.Errorf("expected Europe/Moscow location, got %v (%v)", loc, err)
	}
}

func TestValidateConfig(t *testing.T) {
	base := func() Config {
		return Config{
			App:      AppConfig{Timezone: "UTC"},
			Database: DatabaseConfig{Driver: DriverSQLite, Path: "path"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{
			name: "postgres with dsn",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Driver: DriverPostgres, DSN: "postgres://localhost/medibook"}
			},
		},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database = DatabaseConfig{Driver: DriverPostgres} }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *Config) { c.Booking.CreateRateLimit = -1 }, wantErr: true},
		{
			name: "unknown resource reference",
			mutate: func(c *Config) {
				c.Providers = []models.Provider{{Kind: models.KindAppointment, ID: 1, ResourceIDs: []int64{5}}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected default driver sqlite3, got %s", cfg.Database.Driver)
	}
	if cfg.App.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %s", cfg.App.Timezone)
	}
	if cfg.API.GRPC.Port != 8081 {
		t.Errorf("expected default gRPC port 8081, got %d", cfg.API.GRPC.Port)
	}
	if cfg.Booking.MaxAdvanceDays != models.DefaultMaxAdvanceDays {
		t.Errorf("expected default max advance days %d, got %d", models.DefaultMaxAdvanceDays, cfg.Booking.MaxAdvanceDays)
	}
	if cfg.Policy.CancellationWindow != 24*time.Hour {
		t.Errorf("expected default cancellation window 24h, got %s", cfg.Policy.CancellationWindow)
	}
	if cfg.Booking.CreateRateLimit != 0 {
		t.Errorf("expected rate limit to stay disabled, got %d", cfg.Booking.CreateRateLimit)
	}
	if cfg.API.Auth.Enabled {
		t.Errorf("expected auth disabled without api keys")
	}

	cfg = &Config{API: APIConfig{Auth: APIAuthConfig{APIKeys: []APIClientKey{{Key: "k"}}}}}
	cfg.applyDefaults()
	if !cfg.API.Auth.Enabled {
		t.Errorf("expected auth enabled when api keys are configured")
	}
}

func TestValidateDirectory(t *testing.T) {
	resources := []models.Resource{{ID: 1, Name: "Clinic"}, {ID: 2, Name: "Lab"}}

	tests := []struct {
		name      string
		providers []models.Provider
		resources []models.Resource
		wantErr   bool
	}{
		{
			name: "same id across kinds",
			providers: []models.Provider{
				{Kind: models.KindAppointment, ID: 1, ResourceIDs: []int64{1}},
				{Kind: models.KindLabTest, ID: 1, ResourceIDs: []int64{2}},
			},
			resources: resources,
		},
		{
			name: "duplicate provider",
			providers: []models.Provider{
				{Kind: models.KindAppointment, ID: 1},
				{Kind: models.KindAppointment, ID: 1},
			},
			wantErr: true,
		},
		{name: "zero id", providers: []models.Provider{{Kind: models.KindAppointment}}, wantErr: true},
		{name: "bad kind", providers: []models.Provider{{Kind: "surgery", ID: 3}}, wantErr: true},
		{name: "negative fee", providers: []models.Provider{{Kind: models.KindLabTest, ID: 3, DefaultFee: -1}}, wantErr: true},
		{name: "duplicate resource", resources: []models.Resource{{ID: 1}, {ID: 1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDirectory(tt.providers, tt.resources)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDirectory() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDataSource(t *testing.T) {
	sqlite := DatabaseConfig{Driver: DriverSQLite, Path: "data/medibook.db"}
	if got := sqlite.DataSource(); got != "data/medibook.db" {
		t.Errorf("unexpected sqlite data source %s", got)
	}

	pg := DatabaseConfig{Driver: DriverPostgres, Postgres: PostgresConfig{
		Host: "db", Port: 5432, User: "med", Password: "secret", DBName: "medibook", SSLMode: "disable",
	}}
	if got := pg.DataSource(); got != "postgres://med:secret@db:5432/medibook?sslmode=disable" {
		t.Errorf("unexpected postgres data source %s", got)
	}
}
