// Package config содержит логику чтения конфигурации магазина.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress    = "localhost:8080"
	defaultCartStorePath = "./data/carts"
	defaultOrdersTopic   = "storefront.orders"
	defaultCatalogTTL    = time.Minute
	defaultCartIdleTTL   = 30 * time.Minute
)

// Config содержит параметры конфигурации магазина.
type Config struct {
	RunAddress        string        `env:"RUN_ADDRESS"`
	DatabaseURI       string        `env:"DATABASE_URI"`
	CartStorePath     string        `env:"CART_STORE_PATH"`
	AuthSecret        string        `env:"AUTH_SECRET"`
	KafkaBrokers      string        `env:"KAFKA_BROKERS"`
	KafkaOrdersTopic  string        `env:"KAFKA_ORDERS_TOPIC"`
	AssetUploadURL    string        `env:"ASSET_UPLOAD_URL"`
	AssetUploadPreset string        `env:"ASSET_UPLOAD_PRESET"`
	CatalogCacheTTL   time.Duration `env:"CATALOG_CACHE_TTL"`
	CartIdleTTL       time.Duration `env:"CART_IDLE_TTL"`
}

// Brokers возвращает список брокеров Kafka. Пустой список отключает публикацию событий.
func (c *Config) Brokers() []string {
	var res []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			res = append(res, b)
		}
	}
	return res
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fromEnv := *cfg

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.CartStorePath, "c", defaultCartStorePath, "directory of the cart store")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret for signing auth cookies")
	flag.StringVar(&cfg.KafkaBrokers, "k", "", "comma separated Kafka brokers")
	flag.StringVar(&cfg.KafkaOrdersTopic, "t", defaultOrdersTopic, "Kafka topic for order events")
	flag.StringVar(&cfg.AssetUploadURL, "u", "", "image hosting upload URL")
	flag.StringVar(&cfg.AssetUploadPreset, "p", "", "image hosting upload preset")
	flag.DurationVar(&cfg.CatalogCacheTTL, "ttl", defaultCatalogTTL, "catalog cache TTL, 0 disables caching")
	flag.DurationVar(&cfg.CartIdleTTL, "idle", defaultCartIdleTTL, "how long an untouched cart stays in memory")

	flag.Parse()

	overrideString(&cfg.RunAddress, fromEnv.RunAddress)
	overrideString(&cfg.DatabaseURI, fromEnv.DatabaseURI)
	overrideString(&cfg.CartStorePath, fromEnv.CartStorePath)
	overrideString(&cfg.AuthSecret, fromEnv.AuthSecret)
	overrideString(&cfg.KafkaBrokers, fromEnv.KafkaBrokers)
	overrideString(&cfg.KafkaOrdersTopic, fromEnv.KafkaOrdersTopic)
	overrideString(&cfg.AssetUploadURL, fromEnv.AssetUploadURL)
	overrideString(&cfg.AssetUploadPreset, fromEnv.AssetUploadPreset)
	if fromEnv.CatalogCacheTTL != 0 {
		cfg.CatalogCacheTTL = fromEnv.CatalogCacheTTL
	}
	if fromEnv.CartIdleTTL != 0 {
		cfg.CartIdleTTL = fromEnv.CartIdleTTL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.CartStorePath == "" {
		cfg.CartStorePath = defaultCartStorePath
	}
	if cfg.CartIdleTTL <= 0 {
		cfg.CartIdleTTL = defaultCartIdleTTL
	}

	return cfg, nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
