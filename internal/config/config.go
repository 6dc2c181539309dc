// Package config loads journal server configuration from command-line flags,
// environment variables, a .env file and defaults, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Media    MediaConfig
	Stickers StickersConfig
	Editor   EditorConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	DataDir     string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level     string
	Format    string // "json" or "pretty"; empty picks by environment
	AddSource bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	KeyPath              string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	CookieSecure         bool
	CookieDomain         string
	// LoginRate is the sustained number of login attempts allowed per IP per minute.
	LoginRate  int
	LoginBurst int
}

// DatabaseConfig holds the sqlite location.
type DatabaseConfig struct {
	Path string
}

// MediaConfig holds upload storage configuration.
type MediaConfig struct {
	Path           string
	MaxUploadBytes int64
	MaxDimension   int
}

// StickersConfig holds sticker library configuration.
type StickersConfig struct {
	Dir   string
	Watch bool
}

// EditorConfig holds the defaults handed to editing clients.
type EditorConfig struct {
	NudgeStep       float64
	NudgeStepLarge  float64
	Debounce        time.Duration
	HistoryCapacity int
	GridSize        float64
	MinElementSize  float64
	DuplicateOffset float64
}

// LoadConfig loads configuration from os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses args and merges them with the environment, the .env file and defaults:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	dataDir := fs.String("data-dir", "", "Base directory for database, media and stickers")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, pretty)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma separated CORS origins")

	keyPath := fs.String("auth-key-path", "", "Path to the token signing key")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := fs.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	cookieSecure := fs.String("cookie-secure", "", "Mark auth cookies Secure (default: true in production)")

	dbPath := fs.String("db-path", "", "Path to the sqlite database")
	mediaPath := fs.String("media-path", "", "Directory for uploaded media")
	stickersDir := fs.String("stickers-dir", "", "Directory holding stickers.toml and sticker files")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env files are fine. godotenv.Load never overrides variables already set.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %q: %w", *envFile, err)
	}

	environment := getConfigValue(*env, "ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Environment: environment,
			DataDir:     getConfigValue(*dataDir, "DATA_DIR", ""),
		},
		Logger: LoggerConfig{
			Level:     getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format:    getConfigValue(*logFormat, "LOG_FORMAT", ""),
			AddSource: getBoolConfigValue("", "LOG_ADD_SOURCE", false),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "http://localhost:5173")),
			MaxBodyBytes:   int64(getIntConfigValue("", "SERVER_MAX_BODY_BYTES", 1<<20)),
		},
		Auth: AuthConfig{
			KeyPath:      getConfigValue(*keyPath, "AUTH_KEY_PATH", ""),
			CookieSecure: getBoolConfigValue(*cookieSecure, "COOKIE_SECURE", environment == "production"),
			CookieDomain: getConfigValue("", "COOKIE_DOMAIN", ""),
			LoginRate:    getIntConfigValue("", "LOGIN_RATE_PER_MINUTE", 5),
			LoginBurst:   getIntConfigValue("", "LOGIN_BURST", 5),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DATABASE_PATH", ""),
		},
		Media: MediaConfig{
			Path:           getConfigValue(*mediaPath, "MEDIA_PATH", ""),
			MaxUploadBytes: int64(getIntConfigValue("", "MEDIA_MAX_UPLOAD_BYTES", 10<<20)),
			MaxDimension:   getIntConfigValue("", "MEDIA_MAX_DIMENSION", 4096),
		},
		Stickers: StickersConfig{
			Dir:   getConfigValue(*stickersDir, "STICKERS_DIR", ""),
			Watch: getBoolConfigValue("", "STICKERS_WATCH", true),
		},
		Editor: EditorConfig{
			NudgeStep:       getFloatConfigValue("EDITOR_NUDGE_STEP", 1),
			NudgeStepLarge:  getFloatConfigValue("EDITOR_NUDGE_STEP_LARGE", 10),
			HistoryCapacity: getIntConfigValue("", "EDITOR_HISTORY_CAPACITY", 50),
			GridSize:        getFloatConfigValue("EDITOR_GRID_SIZE", 0),
			MinElementSize:  getFloatConfigValue("EDITOR_MIN_ELEMENT_SIZE", 30),
			DuplicateOffset: getFloatConfigValue("EDITOR_DUPLICATE_OFFSET", 20),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dst       *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m", &cfg.Auth.AccessTokenDuration},
		{*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h", &cfg.Auth.RefreshTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"", "EDITOR_DEBOUNCE", "150ms", &cfg.Editor.Debounce},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Server.Port == "" {
		return errors.New("server port cannot be empty")
	}
	if c.Auth.AccessTokenDuration <= 0 || c.Auth.RefreshTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}
	if c.Auth.LoginRate <= 0 || c.Auth.LoginBurst <= 0 {
		return errors.New("login rate and burst must be positive")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return errors.New("media max upload bytes must be positive")
	}
	if c.Editor.HistoryCapacity <= 0 {
		return errors.New("editor history capacity must be positive")
	}
	if c.Editor.MinElementSize <= 0 {
		return errors.New("editor minimum element size must be positive")
	}

	return nil
}

// expandPaths resolves the data directory and derives unset paths from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.App.DataDir, err = expandPath(c.App.DataDir, filepath.Join(homeDir, ".journal")); err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}

	paths := []struct {
		dst *string
		def string
	}{
		{&c.Database.Path, filepath.Join(c.App.DataDir, "journal.db")},
		{&c.Media.Path, filepath.Join(c.App.DataDir, "media")},
		{&c.Stickers.Dir, filepath.Join(c.App.DataDir, "stickers")},
		{&c.Auth.KeyPath, filepath.Join(c.App.DataDir, "auth.key")},
	}
	for _, p := range paths {
		if *p.dst, err = expandPath(*p.dst, p.def); err != nil {
			return err
		}
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is used.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func getFloatConfigValue(envKey string, defaultValue float64) float64 {
	strValue := os.Getenv(envKey)
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
