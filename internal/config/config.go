// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	ChurchAPI               `yaml:"church_api"`
	RabbitMQ                `yaml:"rabbitmq"`
	Dashboard               `yaml:"dashboard"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"10"`
	RateBurst   int           `yaml:"rate_burst" env-default:"20"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	RedisAddress     string        `yaml:"addressredis"`
	RedisPassword    string        `yaml:"password"`
	RedisUser        string        `yaml:"user"`
	RedisDB          int           `yaml:"db"`
	RedisMaxRetries  int           `yaml:"max_retries"`
	RedisDialTimeout time.Duration `yaml:"dial_timeout"`
	RedisTimeout     time.Duration `yaml:"timeoutredis"`
}

// ChurchAPI структура для настройки клиента внешнего REST API церкви
type ChurchAPI struct {
	BaseURL      string        `yaml:"base_url"`
	ServiceToken string        `yaml:"service_token"`
	APITimeout   time.Duration `yaml:"timeout" env-default:"10s"`
	PageSize     int           `yaml:"page_size" env-default:"100"`
}

// RabbitMQ структура для подключения к брокеру сообщений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Dashboard структура с настройками расчёта статистики и снимков
type Dashboard struct {
	CacheTTL         time.Duration `yaml:"cache_ttl" env-default:"5m"`
	SnapshotSchedule string        `yaml:"snapshot_schedule" env-default:"@daily"`
	// LegacyPreviousDenominator включает старое поведение: посещаемость
	// прошлого периода делится на текущее число членов общины.
	LegacyPreviousDenominator bool `yaml:"legacy_previous_denominator"`
	SubmitConcurrency         int  `yaml:"submit_concurrency" env-default:"8"`
}

// MustLoad функция для загрузки конфига, путь к файлу берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// String печатает конфиг для отладочного лога, секреты скрыты
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"ChurchAPI:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"  PageSize: %d\n"+
			"Dashboard:\n"+
			"  CacheTTL: %s\n"+
			"  SnapshotSchedule: %s\n",
		c.Env,
		c.MigrationsPath,
		c.RedisAddress,
		c.RedisDB,
		c.RedisMaxRetries,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.BaseURL,
		c.APITimeout,
		c.PageSize,
		c.CacheTTL,
		c.SnapshotSchedule,
	)
}
