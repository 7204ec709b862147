package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	NoShowGraceMins int           `mapstructure:"NOSHOW_GRACE_MINUTES"`
	SweepInterval   time.Duration `mapstructure:"SWEEP_INTERVAL"`
	SweepPageSize   int           `mapstructure:"SWEEP_PAGE_SIZE"`
	DoctorLockTTL   time.Duration `mapstructure:"DOCTOR_LOCK_TTL"`
	MigrationsDir   string        `mapstructure:"MIGRATIONS_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("NOSHOW_GRACE_MINUTES", 30)
	v.SetDefault("SWEEP_INTERVAL", "5m")
	v.SetDefault("SWEEP_PAGE_SIZE", 100)
	v.SetDefault("DOCTOR_LOCK_TTL", "10s")
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("NOSHOW_GRACE_MINUTES")
	v.BindEnv("SWEEP_INTERVAL")
	v.BindEnv("SWEEP_PAGE_SIZE")
	v.BindEnv("DOCTOR_LOCK_TTL")
	v.BindEnv("MIGRATIONS_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// NoShowGrace returns the no-show grace period as a duration.
func (c *Config) NoShowGrace() time.Duration {
	return time.Duration(c.NoShowGraceMins) * time.Minute
}

// Validate checks that the configuration is safe to run. In production a real
// JWT secret must be set so that authentication is enforced, and the sweep
// parameters must be sane.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.NoShowGraceMins <= 0 {
		return fmt.Errorf("NOSHOW_GRACE_MINUTES must be positive, got %d", c.NoShowGraceMins)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.SweepPageSize <= 0 {
		return fmt.Errorf("SWEEP_PAGE_SIZE must be positive, got %d", c.SweepPageSize)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
