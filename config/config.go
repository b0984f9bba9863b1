package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	App struct {
		Env         string `yaml:"env"`
		Port        string `yaml:"port"`
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"app"`
	DB struct {
		Driver   string `yaml:"driver"` // "postgres" or "sqlite"
		DSN      string `yaml:"dsn"`    // sqlite file / full DSN override
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"db"`
	JWT struct {
		AccessTokenSecret        string `yaml:"access_token_secret"`
		AccessTokenExpiryMinutes int    `yaml:"access_token_expiry_minutes"`
		RefreshTokenSecret       string `yaml:"refresh_token_secret"`
		RefreshTokenExpiryDays   int    `yaml:"refresh_token_expiry_days"`
	} `yaml:"jwt"`
	Participation struct {
		// MaxAttempts bounds how often a conflicting membership transaction is re-run.
		MaxAttempts int `yaml:"max_attempts"`
	} `yaml:"participation"`
	Events struct {
		DefaultExpiry time.Duration `yaml:"default_expiry"`
	} `yaml:"events"`
	Sweep struct {
		Interval time.Duration `yaml:"interval"` // 0 disables the background sweeper
	} `yaml:"sweep"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Companion struct {
		SendBuffer int `yaml:"send_buffer"`
	} `yaml:"companion"`
}

// Default returns the configuration used when neither a file nor env vars override a value.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Env = "development"
	cfg.App.Port = "8088"
	cfg.App.FrontendURL = "http://localhost:3000"

	cfg.DB.Driver = "postgres"
	cfg.DB.Host = "localhost"
	cfg.DB.Port = "5432"
	cfg.DB.User = "postgres"
	cfg.DB.Password = "password"
	cfg.DB.Name = "huddle_db"
	cfg.DB.SSLMode = "disable"

	cfg.JWT.AccessTokenSecret = "your-very-strong-access-secret"
	cfg.JWT.RefreshTokenSecret = "your-very-strong-refresh-secret"
	cfg.JWT.AccessTokenExpiryMinutes = 15
	cfg.JWT.RefreshTokenExpiryDays = 7

	cfg.Participation.MaxAttempts = 5
	cfg.Events.DefaultExpiry = 24 * time.Hour
	cfg.Sweep.Interval = 10 * time.Minute
	cfg.Log.Level = "info"
	cfg.Companion.SendBuffer = 16
	return cfg
}

// LoadConfig builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variables (a .env file is honoured if present).
func LoadConfig() (*Config, error) {
	// Load .env file. It's okay if it doesn't exist, especially in production
	// where env vars are set directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on system environment variables.")
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWT.AccessTokenSecret == "your-very-strong-access-secret" || cfg.JWT.RefreshTokenSecret == "your-very-strong-refresh-secret" {
		log.Println("WARNING: Using default JWT secrets. Please set JWT_ACCESS_TOKEN_SECRET and JWT_REFRESH_TOKEN_SECRET environment variables for production.")
	}
	if cfg.DB.Password == "password" && cfg.App.Env == "production" {
		log.Println("WARNING: Using default DB password in production. Please set DB_PASSWORD environment variable.")
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	c.App.Env = getEnv("APP_ENV", c.App.Env)
	c.App.Port = getEnv("PORT", c.App.Port)
	c.App.FrontendURL = getEnv("FRONTEND_URL", c.App.FrontendURL)

	c.DB.Driver = getEnv("DB_DRIVER", c.DB.Driver)
	c.DB.DSN = getEnv("DB_DSN", c.DB.DSN)
	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.Port = getEnv("DB_PORT", c.DB.Port)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Password = getEnv("DB_PASSWORD", c.DB.Password)
	c.DB.Name = getEnv("DB_NAME", c.DB.Name)
	c.DB.SSLMode = getEnv("DB_SSLMODE", c.DB.SSLMode)

	c.JWT.AccessTokenSecret = getEnv("JWT_ACCESS_TOKEN_SECRET", c.JWT.AccessTokenSecret)
	c.JWT.RefreshTokenSecret = getEnv("JWT_REFRESH_TOKEN_SECRET", c.JWT.RefreshTokenSecret)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	var err error
	if c.JWT.AccessTokenExpiryMinutes, err = getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", c.JWT.AccessTokenExpiryMinutes); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY_MINUTES: %w", err)
	}
	if c.JWT.RefreshTokenExpiryDays, err = getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY_DAYS", c.JWT.RefreshTokenExpiryDays); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_TOKEN_EXPIRY_DAYS: %w", err)
	}
	if c.Participation.MaxAttempts, err = getEnvAsInt("PARTICIPATION_MAX_ATTEMPTS", c.Participation.MaxAttempts); err != nil {
		return fmt.Errorf("invalid PARTICIPATION_MAX_ATTEMPTS: %w", err)
	}
	if c.Companion.SendBuffer, err = getEnvAsInt("COMPANION_SEND_BUFFER", c.Companion.SendBuffer); err != nil {
		return fmt.Errorf("invalid COMPANION_SEND_BUFFER: %w", err)
	}
	if c.Events.DefaultExpiry, err = getEnvAsDuration("EVENT_DEFAULT_EXPIRY", c.Events.DefaultExpiry); err != nil {
		return fmt.Errorf("invalid EVENT_DEFAULT_EXPIRY: %w", err)
	}
	if c.Sweep.Interval, err = getEnvAsDuration("SWEEP_INTERVAL", c.Sweep.Interval); err != nil {
		return fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	return nil
}

// Validate rejects settings the rest of the application cannot run with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or sqlite)", c.DB.Driver)
	}
	if c.Participation.MaxAttempts < 1 {
		return fmt.Errorf("participation max attempts must be at least 1, got %d", c.Participation.MaxAttempts)
	}
	if c.Events.DefaultExpiry <= 0 {
		return fmt.Errorf("event default expiry must be positive, got %s", c.Events.DefaultExpiry)
	}
	if c.Companion.SendBuffer < 1 {
		c.Companion.SendBuffer = 1
	}
	return nil
}

// ConnectDB opens the database described by the configuration.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if cfg.App.Env == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info) // Log SQL queries in development
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case "sqlite":
		dsn := cfg.DB.DSN
		if dsn == "" {
			dsn = "huddle.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		dsn := cfg.DB.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
				cfg.DB.Host,
				cfg.DB.User,
				cfg.DB.Password,
				cfg.DB.Name,
				cfg.DB.Port,
				cfg.DB.SSLMode,
			)
		}
		dialector = postgres.Open(dsn)
	}

	gormDB, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DB.Driver == "sqlite" {
		// SQLite allows a single writer; serialising connections keeps
		// transactions from failing with SQLITE_BUSY.
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gormDB, nil
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer or return a default value.
func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected integer, got '%s'", key, valueStr)
	}
	return value, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected duration, got '%s'", key, valueStr)
	}
	return value, nil
}
