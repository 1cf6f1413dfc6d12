package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
	_ "time/tzdata" // app.timezone должна грузиться и без системной базы зон

	"medibook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	App        AppConfig         `yaml:"app"`
	Database   DatabaseConfig    `yaml:"database"`
	Redis      RedisConfig       `yaml:"redis"`
	Backup     BackupConfig      `yaml:"backup"`
	Monitoring MonitoringConfig  `yaml:"monitoring"`
	Logging    LoggingConfig     `yaml:"logging"`
	API        APIConfig         `yaml:"api"`
	Booking    BookingConfig     `yaml:"booking"`
	Policy     PolicyConfig      `yaml:"policy"`
	Sweeper    SweeperConfig     `yaml:"sweeper"`
	Providers  []models.Provider `yaml:"providers"`
	Resources  []models.Resource `yaml:"resources"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	// Timezone все даты и время приёмов интерпретируются в этой зоне
	Timezone string `yaml:"timezone"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
	CORS      APICORSConfig      `yaml:"cors"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool         `yaml:"enabled"`
	Port       int          `yaml:"port"`
	Reflection bool         `yaml:"reflection"`
	TLS        APITLSConfig `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CertFile          string `yaml:"cert_file"`
	KeyFile           string `yaml:"key_file"`
	ClientCAFile      string `yaml:"client_ca_file"`
	RequireClientCert bool   `yaml:"require_client_cert"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

// APIClientKey is an upstream gateway allowed to call the API.
// Permissions: read (slots, bookings), write (create/cancel/reschedule), manage (availability, sweep).
type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type APICORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver         string         `yaml:"driver"`
	Path           string         `yaml:"path"`
	DSN            string         `yaml:"dsn"`
	Postgres       PostgresConfig `yaml:"postgres"`
	MaxConnections int            `yaml:"max_connections"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DataSource returns what sql.Open expects for the configured driver.
func (d DatabaseConfig) DataSource() string {
	if d.Driver != DriverPostgres {
		return d.Path
	}
	if d.DSN != "" {
		return d.DSN
	}
	pg := d.Postgres
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(pg.User, pg.Password),
		Host:   fmt.Sprintf("%s:%d", pg.Host, pg.Port),
		Path:   "/" + pg.DBName,
	}
	q := u.Query()
	q.Set("sslmode", pg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
	StoragePath   string        `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BookingConfig struct {
	MaxAdvanceDays   int           `yaml:"max_advance_days"`
	CreateRateLimit  int           `yaml:"create_rate_limit"`
	CreateRateWindow time.Duration `yaml:"create_rate_window"`
}

type PolicyConfig struct {
	CancellationWindow time.Duration `yaml:"cancellation_window"`
}

type SweeperConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case DriverPostgres:
		if c.Database.DSN == "" && c.Database.Postgres.Host == "" {
			return errors.New("postgres dsn or host is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Booking.CreateRateLimit < 0 {
		return errors.New("booking.create_rate_limit must not be negative")
	}

	return ValidateDirectory(c.Providers, c.Resources)
}

// Location returns the operating timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid app.timezone %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

// ValidateDirectory checks the seeded providers and resources.
func ValidateDirectory(providers []models.Provider, resources []models.Resource) error {
	resourceIDs := make(map[int64]bool)
	for _, r := range resources {
		if r.ID == 0 {
			return fmt.Errorf("resource '%s' has invalid ID 0", r.Name)
		}
		if resourceIDs[r.ID] {
			return fmt.Errorf("duplicate resource ID found: %d", r.ID)
		}
		resourceIDs[r.ID] = true
	}

	type key struct {
		kind models.Kind
		id   int64
	}
	providerIDs := make(map[key]bool)
	for _, p := range providers {
		if !p.Kind.Valid() {
			return fmt.Errorf("provider '%s' has unknown kind %q", p.Name, p.Kind)
		}
		if p.ID == 0 {
			return fmt.Errorf("provider '%s' has invalid ID 0", p.Name)
		}
		if p.DefaultFee < 0 {
			return fmt.Errorf("provider %s/%d has negative default fee", p.Kind, p.ID)
		}
		k := key{p.Kind, p.ID}
		if providerIDs[k] {
			return fmt.Errorf("duplicate provider ID found: %s/%d", p.Kind, p.ID)
		}
		providerIDs[k] = true

		for _, rid := range p.ResourceIDs {
			if !resourceIDs[rid] {
				return fmt.Errorf("provider %s/%d references unknown resource %d", p.Kind, p.ID, rid)
			}
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "medibook"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "UTC"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverPostgres {
		if c.Database.Postgres.Port == 0 {
			c.Database.Postgres.Port = 5432
		}
		if c.Database.Postgres.SSLMode == "" {
			c.Database.Postgres.SSLMode = "disable"
		}
		if c.Database.MaxConnections == 0 {
			c.Database.MaxConnections = 10
		}
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	// auth включается автоматически, если заданы ключи
	if len(c.API.Auth.APIKeys) > 0 {
		c.API.Auth.Enabled = true
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}

	// Booking defaults
	if c.Booking.MaxAdvanceDays == 0 {
		c.Booking.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if c.Booking.CreateRateWindow == 0 {
		c.Booking.CreateRateWindow = models.DefaultCreateRateWindow * time.Second
	}
	if c.Policy.CancellationWindow == 0 {
		c.Policy.CancellationWindow = models.DefaultCancellationWindowHours * time.Hour
	}
	if c.Sweeper.Interval == 0 {
		c.Sweeper.Interval = models.DefaultSweepIntervalSeconds * time.Second
	}
	if c.Backup.Interval == 0 {
		c.Backup.Interval = 24 * time.Hour
	}
}
