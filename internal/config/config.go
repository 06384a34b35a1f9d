package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "default_super_secret_key"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	Log    LogConfig
	CORS   CORSConfig
	Device DeviceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in release mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds the shared secret used to verify tokens issued by the accounting host.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DeviceConfig holds settings for talking to the TIMS/ETR control unit.
// Address and feature flags live on the DeviceSetup row, not here.
type DeviceConfig struct {
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	ProbeTimeout        time.Duration `mapstructure:"probe_timeout"`
	ClaimTTL            time.Duration `mapstructure:"claim_ttl"`
	DefaultTillNumber   string        `mapstructure:"default_till_number"`
	DefaultSerialNumber string        `mapstructure:"default_serial_number"`
}

// Load reads configs/.env (or the given files) and then environment
// variables with the TIMS_ prefix.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{"configs/.env"}
	}
	for _, f := range envFiles {
		// missing files are fine, real env vars take over
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvPrefix("TIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "postgres")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	v.SetDefault("jwt.secret", defaultJWTSecret)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://127.0.0.1:5173")

	// Device defaults
	v.SetDefault("device.request_timeout", "60s")
	v.SetDefault("device.probe_timeout", "5s")
	v.SetDefault("device.claim_ttl", "2m")
	v.SetDefault("device.default_till_number", "")
	v.SetDefault("device.default_serial_number", "")

	cfg := &Config{}

	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TIMS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Device = DeviceConfig{
		RequestTimeout:      v.GetDuration("device.request_timeout"),
		ProbeTimeout:        v.GetDuration("device.probe_timeout"),
		ClaimTTL:            v.GetDuration("device.claim_ttl"),
		DefaultTillNumber:   v.GetString("device.default_till_number"),
		DefaultSerialNumber: v.GetString("device.default_serial_number"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return errors.New("TIMS_JWT_SECRET is required in production")
	}
	if c.Device.RequestTimeout <= 0 {
		return fmt.Errorf("invalid device request timeout: %s", c.Device.RequestTimeout)
	}
	if c.Device.ProbeTimeout <= 0 {
		return fmt.Errorf("invalid device probe timeout: %s", c.Device.ProbeTimeout)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
