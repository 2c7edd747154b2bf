package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uma-arai/sbcntr-hotel/internal/common/database"
	"github.com/uma-arai/sbcntr-hotel/internal/email"
)

const (
	// StoreDriverPostgres は台帳を PostgreSQL に保存します
	StoreDriverPostgres = "postgres"
	// StoreDriverBadger は台帳をローカルの Badger に保存します
	StoreDriverBadger = "badger"
)

type Config struct {
	DB  database.Config
	SFN struct {
		TaskToken string
	}
	Store struct {
		Driver    string
		BadgerDir string
	}
	Logs struct {
		ReservationsPath string
		PaymentsPath     string
		S3Bucket         string
	}
	InventoryFile      string
	StrictAvailability bool
	PaymentDelay       time.Duration
	SMTP               email.Config
	Local              bool
	EnableTracing      bool
}

// LoadConfig は設定を読み込みます
func LoadConfig(taskToken string) (*Config, error) {
	local := IsLocal()

	cfg := &Config{
		DB: database.Config{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvAsIntOrDefault("DB_PORT", 5432),
			UserName: getEnvOrDefault("DB_USERNAME", "sbcntrapp"),
			Password: getEnvOrDefault("DB_PASSWORD", "password"),
			DBName:   getEnvOrDefault("DB_NAME", "sbcntrapp"),
		},
		InventoryFile:      os.Getenv("INVENTORY_FILE"),
		StrictAvailability: getEnvAsBoolOrDefault("STRICT_AVAILABILITY", true),
		PaymentDelay:       time.Duration(getEnvAsIntOrDefault("PAYMENT_DELAY_MS", 1500)) * time.Millisecond,
		SMTP: email.Config{
			Host:      os.Getenv("SMTP_HOST"),
			Port:      getEnvAsIntOrDefault("SMTP_PORT", 587),
			User:      os.Getenv("SMTP_USER"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromName:  os.Getenv("SMTP_FROM_NAME"),
			FromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		},
		Local:         local,
		EnableTracing: false,
	}
	cfg.SFN.TaskToken = taskToken

	// ローカル環境ではDBを用意しなくても動くように Badger を既定にする
	defaultDriver := StoreDriverPostgres
	if local {
		defaultDriver = StoreDriverBadger
	}
	cfg.Store.Driver = strings.ToLower(getEnvOrDefault("STORE_DRIVER", defaultDriver))
	cfg.Store.BadgerDir = getEnvOrDefault("BADGER_DIR", "/tmp/sbcntr-hotel")

	cfg.Logs.ReservationsPath = getEnvOrDefault("RESERVATIONS_LOG_PATH", "data/reservas.json")
	cfg.Logs.PaymentsPath = getEnvOrDefault("PAYMENTS_LOG_PATH", "data/pagos.json")
	cfg.Logs.S3Bucket = os.Getenv("S3_LOG_BUCKET")

	// 環境変数[SBCNTR_ENABLE_TRACING]を見てトレースを有効にする。対応しているTracingはAWS_XRAYのみ。
	// 環境変数[AWS_XRAY_SDK_DISABLED]がtrueの場合は必ずトレースを無効にする。
	enableKey := os.Getenv("SBCNTR_ENABLE_TRACING")
	if !sdkDisabled() && (strings.ToLower(enableKey) == "true" || enableKey == "1") {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "FALSE")
		cfg.EnableTracing = true
	} else {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "TRUE")
		cfg.EnableTracing = false
	}

	return cfg, nil
}

// IsLocal は ENV=LOCAL で実行されている場合に true を返します
func IsLocal() bool {
	return os.Getenv("ENV") == "LOCAL"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Printf("Environment variable %s is not set, using default value", key)
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Environment variable %s is not an integer, using default value", key)
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		log.Printf("Environment variable %s is not a boolean, using default value", key)
	}
	return defaultValue
}

// Check if SDK is disabled
func sdkDisabled() bool {
	disableKey := os.Getenv("AWS_XRAY_SDK_DISABLED")
	return strings.ToLower(disableKey) == "true"
}
