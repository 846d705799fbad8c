package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
}

type ServerConfig struct {
	OpsPort string
	Env     string
}

type TelegramConfig struct {
	Token   string
	AdminID int64
}

type StorageConfig struct {
	// DataFile is the JSON catalog snapshot. DatabaseURL, when set,
	// switches the catalog to Postgres instead.
	DataFile    string
	ImagesDir   string
	DatabaseURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers   []string
	TopicShop string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

func Load() *Config {
	_ = godotenv.Load()

	adminID, _ := strconv.ParseInt(getEnv("ADMIN_ID", "0"), 10, 64)
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	var brokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	cfg := &Config{
		Server: ServerConfig{
			OpsPort: getEnv("OPS_PORT", "8080"),
			Env:     getEnv("ENV", "development"),
		},
		Telegram: TelegramConfig{
			Token:   getEnv("BOT_TOKEN", ""),
			AdminID: adminID,
		},
		Storage: StorageConfig{
			DataFile:    getEnv("DATA_FILE", "data.json"),
			ImagesDir:   getEnv("IMAGES_DIR", "images"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:   brokers,
			TopicShop: getEnv("KAFKA_TOPIC_SHOP_EVENTS", "shop-events"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
	}

	log.Printf("Config loaded: env=%s, admin_id=%d, ops_port=%s", cfg.Server.Env, cfg.Telegram.AdminID, cfg.Server.OpsPort)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
