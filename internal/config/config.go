// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек приложения.
type Config struct {
	Env                     string `yaml:"env" validate:"required"`
	Platform                string `yaml:"platform" validate:"oneof=ios android"`
	StorageConnectionString string `yaml:"storage_connection_string" validate:"required"`
	MigrationsPath          string `yaml:"migrations_path"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitConnection        `yaml:"rabbit_connection"`
	Endpoints               `yaml:"endpoints"`
	Products                `yaml:"products"`
	JWTToken                `yaml:"jwttoken"`
	DebugServer             `yaml:"debug_server"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitConnection структура для настройки подключения к rabbitmq.
type RabbitConnection struct {
	AddressRabbit string `yaml:"addressrabbit"`
	ReminderQueue string `yaml:"reminder_queue"`
	EmailQueue    string `yaml:"email_queue"`
}

// Endpoints адреса внешних HTTP-сервисов.
type Endpoints struct {
	ReceiptValidatorURL string        `yaml:"receipt_validator_url"`
	SendOTPURL          string        `yaml:"send_otp_url"`
	VerifyOTPURL        string        `yaml:"verify_otp_url"`
	ValidationTimeout   time.Duration `yaml:"validation_timeout"`
	OTPResendInterval   time.Duration `yaml:"otp_resend_interval"`
}

// Products списки идентификаторов продуктов маркетплейса.
type Products struct {
	SubscriptionIDs []string `yaml:"subscription_ids"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// DebugServer структура для настройки отладочного HTTP-сервера (метрики, health).
type DebugServer struct {
	AddressDebug string        `yaml:"addressdebug"`
	TimeoutDebug time.Duration `yaml:"timeoutdebug"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// MustLoad загружает конфиг из файла, указанного в CONFIG_PATH.
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
	if err := validator.New().Struct(cfg); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	if cfg.ValidationTimeout == 0 {
		cfg.ValidationTimeout = 10 * time.Second
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Platform: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitConnection:\n"+
			"  Addr: %s\n"+
			"  ReminderQueue: %s\n"+
			"Endpoints:\n"+
			"  ReceiptValidator: %s\n"+
			"  SendOTP: %s\n"+
			"  VerifyOTP: %s\n"+
			"  ValidationTimeout: %s\n"+
			"Products: %v\n"+
			"DebugServer:\n"+
			"  Address: %s\n",
		c.Env,
		c.Platform,
		c.StorageConnectionString,
		c.AddressRedis,
		c.DB,
		c.AddressRabbit,
		c.ReminderQueue,
		c.ReceiptValidatorURL,
		c.SendOTPURL,
		c.VerifyOTPURL,
		c.ValidationTimeout,
		c.SubscriptionIDs,
		c.AddressDebug,
	)
}
