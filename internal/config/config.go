// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is shared by the api and worker binaries; each reads what it needs.
type Config struct {
	AppEnv string

	HTTPAddr       string
	WorkerHTTPAddr string

	PostgresDSN string

	RedisAddr             string
	RedisQueueKey         string
	RedisProcessingKey    string
	RedisProcessingMapKey string
	Workers               int
	// QueueVisibilityTimeout is how long a claimed job may run before the
	// reaper and the job table treat its worker as dead.
	QueueVisibilityTimeout time.Duration

	WorkerURL     string
	WorkerTimeout time.Duration

	FFmpegBin        string
	ThumbnailTimeout time.Duration
	RenditionTimeout time.Duration
	ThumbnailOffset  time.Duration
	ThumbnailWidth   int
	BatchConcurrency int

	Storage StorageConfig
}

type StorageConfig struct {
	Driver        string // s3 | fs
	Path          string
	PublicBaseURL string

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3ForcePathStyle  bool
}

// Load reads .env.local and .env when present, then the environment.
// Variables already set win over .env.local, which wins over .env.
func Load() (*Config, error) {
	if err := loadEnvFiles(".env.local", ".env"); err != nil {
		return nil, err
	}
	return FromEnv()
}

func loadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// tiersPerJob bounds how many renditions one worker job encodes.
const tiersPerJob = 3

func FromEnv() (*Config, error) {
	processingKey := envOr("REDIS_PROCESSING_KEY", "renditions:processing")

	c := &Config{
		AppEnv:         envOr("APP_ENV", "production"),
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		WorkerHTTPAddr: envOr("WORKER_HTTP_ADDR", ":8081"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		RedisAddr:             envOr("REDIS_ADDR", "localhost:6379"),
		RedisQueueKey:         envOr("REDIS_QUEUE_KEY", "renditions:queue"),
		RedisProcessingKey:    processingKey,
		RedisProcessingMapKey: envOr("REDIS_PROCESSING_MAP_KEY", processingKey+":map"),
		Workers:               envIntOr("WORKERS", 2),

		WorkerURL:     envOr("WORKER_URL", "http://localhost:8081"),
		WorkerTimeout: envSecondsOr("WORKER_TIMEOUT_SECONDS", 10),

		FFmpegBin:        envOr("FFMPEG_BIN", "ffmpeg"),
		ThumbnailTimeout: envSecondsOr("THUMBNAIL_TIMEOUT_SECONDS", 30),
		RenditionTimeout: envSecondsOr("RENDITION_TIMEOUT_SECONDS", 600),
		ThumbnailOffset:  envSecondsOr("THUMBNAIL_OFFSET_SECONDS", 1),
		ThumbnailWidth:   envIntOr("THUMBNAIL_WIDTH", 480),
		BatchConcurrency: envIntOr("BATCH_CONCURRENCY", 1),

		Storage: StorageConfig{
			Driver:            strings.ToLower(envOr("STORAGE_DRIVER", "fs")),
			Path:              envOr("STORAGE_PATH", "./data/objects"),
			PublicBaseURL:     os.Getenv("STORAGE_PUBLIC_BASE_URL"),
			S3Bucket:          os.Getenv("S3_BUCKET"),
			S3Region:          os.Getenv("S3_REGION"),
			S3Endpoint:        os.Getenv("S3_ENDPOINT"),
			S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			S3ForcePathStyle:  envBoolOr("S3_FORCE_PATH_STYLE", false),
		},
	}

	if c.PostgresDSN == "" {
		return nil, fmt.Errorf("missing env: POSTGRES_DSN")
	}
	switch c.Storage.Driver {
	case "fs", "s3":
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q (want s3 or fs)", c.Storage.Driver)
	}
	if c.Storage.Driver == "s3" && c.Storage.S3Bucket == "" {
		return nil, fmt.Errorf("missing env: S3_BUCKET")
	}
	c.QueueVisibilityTimeout = envSecondsOr("QUEUE_VISIBILITY_TIMEOUT_SECONDS", 0)
	if c.QueueVisibilityTimeout <= 0 {
		c.QueueVisibilityTimeout = tiersPerJob*c.RenditionTimeout + 5*time.Minute
	}
	if c.QueueVisibilityTimeout <= c.RenditionTimeout {
		return nil, fmt.Errorf("QUEUE_VISIBILITY_TIMEOUT_SECONDS must exceed RENDITION_TIMEOUT_SECONDS")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 1
	}
	return c, nil
}

func envOr(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envSecondsOr(key string, def int) time.Duration {
	return time.Duration(envIntOr(key, def)) * time.Second
}

func envBoolOr(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

var dsnPassword = regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)

// RedactDSN masks the password in a postgres URL: user:pass@ -> user:****@.
func RedactDSN(dsn string) string {
	return dsnPassword.ReplaceAllString(dsn, `://$1:****@`)
}
