package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

const appDirName = "manjaword"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Grammar   GrammarConfig
	Export    ExportConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string // empty means <data dir>/manjaword.db for sqlite
}

type AuthConfig struct {
	SessionSecret string
}

type StorageConfig struct {
	// DataDir overrides the platform local-data directory.
	DataDir string
}

type GrammarConfig struct {
	URL               string
	Language          string
	RequestsPerSecond float64
	Burst             int
}

type ExportConfig struct {
	PaginatePDF bool
}

type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type LoggingConfig struct {
	Level string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: getEnv("MANJAWORD_HOST", "127.0.0.1"),
			Port: getEnv("MANJAWORD_PORT", "1420"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("MANJAWORD_DB_DRIVER", "sqlite"),
			DSN:    getEnv("MANJAWORD_DB_DSN", ""),
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("MANJAWORD_SESSION_SECRET", ""),
		},
		Storage: StorageConfig{
			DataDir: getEnv("MANJAWORD_DATA_DIR", ""),
		},
		Grammar: GrammarConfig{
			URL:               getEnv("MANJAWORD_GRAMMAR_URL", "http://localhost:8081/v2/check"),
			Language:          getEnv("MANJAWORD_GRAMMAR_LANGUAGE", "en-US"),
			RequestsPerSecond: getEnvAsFloat("MANJAWORD_GRAMMAR_RPS", 2),
			Burst:             getEnvAsInt("MANJAWORD_GRAMMAR_BURST", 4),
		},
		Export: ExportConfig{
			PaginatePDF: getEnvAsBool("MANJAWORD_PDF_PAGINATE", false),
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  getEnvAsInt("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getEnvAsInt("WS_WRITE_BUFFER_SIZE", 1024),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "tauri://localhost,http://localhost:1420"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Addr is the listen address of the backend.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// DataDir resolves the application-private local-data directory without
// creating it.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	base, err := localDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// localDataDir follows the same per-platform rules desktop shells use for
// "local" (non-roaming) application data.
func localDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return os.UserConfigDir()
	case "darwin", "ios":
		return os.UserConfigDir()
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
