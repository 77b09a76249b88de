package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	GeocodeBase string
	GeocodeKey  string

	AssistBase string
	AssistKey  string

	MediaBucket     string
	MediaRegion     string
	MediaEndpoint   string // custom S3-compatible endpoint; empty = AWS
	MediaPublicBase string // public URL prefix; empty = derived from bucket+region

	CheckoutBase string
	JWTSecret    string

	UploadWorkers int
	SeedWorkers   int

	SessionTTL time.Duration
	PickerTTL  time.Duration
	PendingTTL time.Duration
	DialogTTL  time.Duration
	CacheTTL   time.Duration
}

func Load() Config {
	_ = godotenv.Load() // optional .env for local runs
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/swipess?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		GeocodeBase: env("GEOCODE_BASE_URL", "https://maps.googleapis.com/maps/api/geocode"),
		GeocodeKey:  env("GEOCODE_API_KEY", ""),

		AssistBase: env("ASSIST_BASE_URL", "https://assist.swipess.app"),
		AssistKey:  env("ASSIST_API_KEY", ""),

		MediaBucket:     env("MEDIA_BUCKET", "swipess-media"),
		MediaRegion:     env("MEDIA_REGION", "us-east-1"),
		MediaEndpoint:   env("MEDIA_ENDPOINT", ""),
		MediaPublicBase: env("MEDIA_PUBLIC_BASE_URL", ""),

		CheckoutBase: env("CHECKOUT_BASE_URL", "https://pay.swipess.app/checkout"),
		JWTSecret:    env("JWT_SECRET", ""),

		UploadWorkers: atoi("UPLOAD_WORKERS", 4),
		SeedWorkers:   atoi("SEED_WORKERS", 4),

		SessionTTL: time.Duration(atoi("SESSION_TTL_SECONDS", 86400)) * time.Second,
		PickerTTL:  time.Duration(atoi("PICKER_TTL_SECONDS", 3600)) * time.Second,
		PendingTTL: time.Duration(atoi("PENDING_TTL_SECONDS", 3600)) * time.Second,
		DialogTTL:  time.Duration(atoi("DIALOG_TTL_SECONDS", 86400)) * time.Second,
		CacheTTL:   time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	if c.GeocodeKey == "" {
		log.Warn().Msg("GEOCODE_API_KEY is empty")
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
