package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string
	Port          string
	GinMode       string
	LogLevel      string
	SessionSecret string
	SessionTTL    time.Duration

	StoreDriver  string
	DatabasePath string
	Mongo        MongoConfig
	Redis        RedisConfig

	UploadDir     string
	UploadURLPath string
	Minio         MinioConfig

	AdminUserName string
	AdminPassword string

	ContactRateLimit float64
	ContactRateBurst int
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// RedisConfig 为空地址时表示不启用缓存
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// MinioConfig 为空 Endpoint 时使用本地上传目录
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

var defaults = map[string]any{
	"PORT":               "8080",
	"GIN_MODE":           "release",
	"LOG_LEVEL":          "info",
	"SESSION_SECRET":     "kalaga-dev-secret",
	"SESSION_TTL":        "12h",
	"STORE_DRIVER":       StoreSQLite,
	"DATABASE_PATH":      "kalaga.db",
	"MONGODB_DATABASE":   "kalaga",
	"MONGODB_TIMEOUT":    "10s",
	"REDIS_DB":           0,
	"CACHE_TTL":          "5m",
	"UPLOAD_DIR":         "data/uploads",
	"UPLOAD_URL_PATH":    "/uploads",
	"MINIO_BUCKET":       "kalaga-uploads",
	"MINIO_USE_SSL":      false,
	"CONTACT_RATE_LIMIT": 0.2,
	"CONTACT_RATE_BURST": 3,
}

// Load 读取 .env（如存在）与环境变量，并为缺失项提供默认值。
func Load() AppConfig {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// FromViper builds the config from an already prepared viper instance.
func FromViper(v *viper.Viper) AppConfig {
	get := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	port := get("PORT")
	if port == "" {
		port = "8080"
	}
	listenAddr := get("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(get("STORE_DRIVER"))
	switch driver {
	case StoreSQLite, StoreMongo, StoreMemory:
	default:
		driver = StoreSQLite
	}

	return AppConfig{
		ListenAddr:    listenAddr,
		Port:          port,
		GinMode:       orDefault(get("GIN_MODE"), "release"),
		LogLevel:      orDefault(strings.ToLower(get("LOG_LEVEL")), "info"),
		SessionSecret: orDefault(get("SESSION_SECRET"), "kalaga-dev-secret"),
		SessionTTL:    duration(v, "SESSION_TTL", 12*time.Hour),

		StoreDriver:  driver,
		DatabasePath: orDefault(get("DATABASE_PATH"), "kalaga.db"),
		Mongo: MongoConfig{
			URI:      get("MONGODB_URI"),
			Database: orDefault(get("MONGODB_DATABASE"), "kalaga"),
			Timeout:  duration(v, "MONGODB_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     get("REDIS_ADDR"),
			Password: get("REDIS_PASSWORD"),
			DB:       nonNegativeInt(v, "REDIS_DB", 0),
			TTL:      duration(v, "CACHE_TTL", 5*time.Minute),
		},

		UploadDir:     orDefault(get("UPLOAD_DIR"), "data/uploads"),
		UploadURLPath: orDefault(get("UPLOAD_URL_PATH"), "/uploads"),
		Minio: MinioConfig{
			Endpoint:  get("MINIO_ENDPOINT"),
			AccessKey: get("MINIO_ACCESS_KEY"),
			SecretKey: get("MINIO_SECRET_KEY"),
			Bucket:    orDefault(get("MINIO_BUCKET"), "kalaga-uploads"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			PublicURL: strings.TrimRight(get("MINIO_PUBLIC_URL"), "/"),
		},

		AdminUserName: get("ADMIN_USER_NAME"),
		AdminPassword: get("ADMIN_PASSWORD"),

		ContactRateLimit: positiveFloat(v, "CONTACT_RATE_LIMIT", 0.2),
		ContactRateBurst: positiveInt(v, "CONTACT_RATE_BURST", 3),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// duration 解析失败时回退到默认值，不因为拼写错误而拒绝启动
func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func positiveFloat(v *viper.Viper, key string, fallback float64) float64 {
	if f := v.GetFloat64(key); f > 0 {
		return f
	}
	return fallback
}

func positiveInt(v *viper.Viper, key string, fallback int) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return fallback
}

func nonNegativeInt(v *viper.Viper, key string, fallback int) int {
	if n := v.GetInt(key); n >= 0 {
		return n
	}
	return fallback
}
