package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application-wide configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
	Program  ProgramConfig  `mapstructure:"program"`
	Payments PaymentsConfig `mapstructure:"payments"`
	Mirror   MirrorConfig   `mapstructure:"mirror"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
	// RegistrationRateLimit is the number of public form submissions allowed
	// per client IP per minute.
	RegistrationRateLimit int `mapstructure:"registration_rate_limit"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig relational store settings
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres | sqlite
	Path            string `mapstructure:"path"`   // sqlite file
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
	ConnectTimeout  int    `mapstructure:"connect_timeout"` // seconds
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
	if c.ConnectTimeout > 0 {
		dsn += fmt.Sprintf(" connect_timeout=%d", c.ConnectTimeout)
	}
	return dsn
}

// RedisConfig cache settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig admin session settings
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// MailConfig notification settings
type MailConfig struct {
	Provider       string        `mapstructure:"provider"` // sendgrid | log
	SendGridAPIKey string        `mapstructure:"sendgrid_api_key"`
	FromName       string        `mapstructure:"from_name"`
	FromAddress    string        `mapstructure:"from_address"`
	AdminAddress   string        `mapstructure:"admin_address"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"` // file path, empty for stderr
}

// ProgramConfig describes the program cohorts.
type ProgramConfig struct {
	Name string `mapstructure:"name"`
	// CohortCutoff splits registrations: submitted strictly before it is the
	// early cohort, on or after it the later cohort. RFC3339.
	CohortCutoff     string `mapstructure:"cohort_cutoff"`
	EarlyCohortLabel string `mapstructure:"early_cohort_label"`
	LaterCohortLabel string `mapstructure:"later_cohort_label"`
}

// Cutoff returns the parsed cohort cutoff.
func (p *ProgramConfig) Cutoff() time.Time {
	t, _ := time.Parse(time.RFC3339, p.CohortCutoff)
	return t
}

// PaymentsConfig tuition settings
type PaymentsConfig struct {
	DefaultTuition float64 `mapstructure:"default_tuition"`
	Currency       string  `mapstructure:"currency"`
	MonthsAhead    int     `mapstructure:"months_ahead"`
	// GenerateSchedule is a cron spec for the monthly generation job; empty disables it.
	GenerateSchedule string `mapstructure:"generate_schedule"`
}

// MirrorConfig local fallback storage settings
type MirrorConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from file and environment.
// Precedence: environment > config file > defaults.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.registration_rate_limit", 10)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.path", "robolab.db")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "robolab")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)
	v.SetDefault("db.connect_timeout", 5)
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "8h")

	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.from_name", "RoboLab Kids")
	v.SetDefault("mail.from_address", "no-reply@robolab.example")
	v.SetDefault("mail.admin_address", "admin@robolab.example")
	v.SetDefault("mail.timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("program.name", "RoboLab Kids")
	v.SetDefault("program.cohort_cutoff", "2025-09-01T00:00:00Z")
	v.SetDefault("program.early_cohort_label", "Summer Camp")
	v.SetDefault("program.later_cohort_label", "Fall Program")

	v.SetDefault("payments.default_tuition", 150.0)
	v.SetDefault("payments.currency", "USD")
	v.SetDefault("payments.months_ahead", 12)
	v.SetDefault("payments.generate_schedule", "")

	v.SetDefault("mirror.path", "data/registrations.json")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ROBOLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the process cannot run without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret must be set")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be within 1-65535")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid config: db.driver %q (want postgres or sqlite)", c.Database.Driver)
	}
	switch c.Mail.Provider {
	case "log":
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("invalid config: mail.sendgrid_api_key is required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("invalid config: mail.provider %q (want sendgrid or log)", c.Mail.Provider)
	}
	if _, err := time.Parse(time.RFC3339, c.Program.CohortCutoff); err != nil {
		return fmt.Errorf("invalid config: program.cohort_cutoff: %w", err)
	}
	if c.Payments.DefaultTuition <= 0 {
		return fmt.Errorf("invalid config: payments.default_tuition must be positive")
	}
	if c.Payments.MonthsAhead <= 0 {
		return fmt.Errorf("invalid config: payments.months_ahead must be positive")
	}
	return nil
}
