package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	TestDBName string `mapstructure:"test_dbname"` // Separate database for testing
}

// AuthConfig holds the session token settings
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// AdminConfig holds the bootstrap admin credentials, read by the seed command only
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode,
	)
}

// GetURL returns the database connection string in URL form, as the migrator expects
func (c *DatabaseConfig) GetURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// environment variable bound to each key
var envBindings = map[string]string{
	"server.port":            "SERVER_PORT",
	"server.allowed_origins": "ALLOWED_ORIGINS",
	"database.host":          "DB_HOST",
	"database.port":          "DB_PORT",
	"database.username":      "DB_USERNAME",
	"database.password":      "DB_PASSWORD",
	"database.dbname":        "DB_NAME",
	"database.sslmode":       "DB_SSLMODE",
	"database.test_dbname":   "TEST_DB_NAME",
	"auth.jwt_secret":        "JWT_SECRET",
	"auth.token_ttl":         "TOKEN_TTL",
	"auth.cookie_secure":     "COOKIE_SECURE",
	"admin.username":         "ADMIN_DEFAULT_USERNAME",
	"admin.password":         "ADMIN_DEFAULT_PASSWORD",
	"log.level":              "LOG_LEVEL",
	"log.pretty":             "LOG_PRETTY",
}

// LoadConfig loads the configuration from an optional config file and environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "zanledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.test_dbname", "zanledger_test")
	v.SetDefault("auth.jwt_secret", "your-secret-key-here")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "admin123")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	v.SetConfigType("yaml")
	if path := os.Getenv("ZANLEDGER_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && os.Getenv("ZANLEDGER_CONFIG") != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// ALLOWED_ORIGINS may arrive as one comma separated value
	if len(cfg.Server.AllowedOrigins) == 1 && strings.Contains(cfg.Server.AllowedOrigins[0], ",") {
		cfg.Server.AllowedOrigins = strings.Split(cfg.Server.AllowedOrigins[0], ",")
	}

	return &cfg, nil
}
