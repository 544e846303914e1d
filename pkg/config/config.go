package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	MediaDriverLocal = "local"
	MediaDriverS3    = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Media    MediaConfig
	Events   EventsConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MediaConfig selects and configures the image host.
type MediaConfig struct {
	Driver           string
	Folder           string
	UploadTimeout    time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string

	LocalDir      string
	PublicBaseURL string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PublicBaseURL string
}

// EventsConfig tunes event creation and listing.
type EventsConfig struct {
	CacheEnabled    bool
	CacheTTL        time.Duration
	PersistTimeout  time.Duration
	SlugMaxAttempts int
}

// JobsConfig sizes the background cleanup queue.
type JobsConfig struct {
	CleanupWorkers    int
	CleanupRetries    int
	CleanupRetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Server = ServerConfig{
		ReadTimeout:     parseDuration(v.GetString("SERVER_READ_TIMEOUT"), 15*time.Second),
		WriteTimeout:    parseDuration(v.GetString("SERVER_WRITE_TIMEOUT"), 60*time.Second),
		ShutdownTimeout: parseDuration(v.GetString("SERVER_SHUTDOWN_TIMEOUT"), 10*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxImageSize := v.GetInt64("MEDIA_MAX_FILE_SIZE")
	if maxImageSize <= 0 {
		maxImageSize = 5 * 1024 * 1024
	}
	cfg.Media = MediaConfig{
		Driver:           strings.ToLower(v.GetString("MEDIA_DRIVER")),
		Folder:           v.GetString("MEDIA_FOLDER"),
		UploadTimeout:    parseDuration(v.GetString("MEDIA_UPLOAD_TIMEOUT"), 30*time.Second),
		MaxFileSizeBytes: maxImageSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("MEDIA_ALLOWED_MIME_TYPES")),
		LocalDir:         v.GetString("MEDIA_LOCAL_DIR"),
		PublicBaseURL:    strings.TrimRight(v.GetString("MEDIA_PUBLIC_BASE_URL"), "/"),
		S3Bucket:         v.GetString("MEDIA_S3_BUCKET"),
		S3Region:         v.GetString("MEDIA_S3_REGION"),
		S3Endpoint:       v.GetString("MEDIA_S3_ENDPOINT"),
		S3PublicBaseURL:  strings.TrimRight(v.GetString("MEDIA_S3_PUBLIC_BASE_URL"), "/"),
	}

	cfg.Events = EventsConfig{
		CacheEnabled:    v.GetBool("EVENTS_CACHE_ENABLED"),
		CacheTTL:        parseDuration(v.GetString("EVENTS_CACHE_TTL"), time.Minute),
		PersistTimeout:  parseDuration(v.GetString("EVENTS_PERSIST_TIMEOUT"), 5*time.Second),
		SlugMaxAttempts: v.GetInt("EVENTS_SLUG_MAX_ATTEMPTS"),
	}

	cfg.Jobs = JobsConfig{
		CleanupWorkers:    v.GetInt("MEDIA_CLEANUP_WORKERS"),
		CleanupRetries:    v.GetInt("MEDIA_CLEANUP_RETRIES"),
		CleanupRetryDelay: parseDuration(v.GetString("MEDIA_CLEANUP_RETRY_DELAY"), 2*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "60s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "devevent")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MEDIA_DRIVER", MediaDriverLocal)
	v.SetDefault("MEDIA_FOLDER", "devevent")
	v.SetDefault("MEDIA_UPLOAD_TIMEOUT", "30s")
	v.SetDefault("MEDIA_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("MEDIA_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif,image/webp")
	v.SetDefault("MEDIA_LOCAL_DIR", "./media")
	v.SetDefault("MEDIA_PUBLIC_BASE_URL", "http://localhost:8080/media")
	v.SetDefault("MEDIA_S3_BUCKET", "")
	v.SetDefault("MEDIA_S3_REGION", "us-east-1")
	v.SetDefault("MEDIA_S3_ENDPOINT", "")
	v.SetDefault("MEDIA_S3_PUBLIC_BASE_URL", "")

	v.SetDefault("EVENTS_CACHE_ENABLED", false)
	v.SetDefault("EVENTS_CACHE_TTL", "1m")
	v.SetDefault("EVENTS_PERSIST_TIMEOUT", "5s")
	v.SetDefault("EVENTS_SLUG_MAX_ATTEMPTS", 5)

	v.SetDefault("MEDIA_CLEANUP_WORKERS", 1)
	v.SetDefault("MEDIA_CLEANUP_RETRIES", 3)
	v.SetDefault("MEDIA_CLEANUP_RETRY_DELAY", "2s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
