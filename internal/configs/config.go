package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// TelegramConfig хранит конфигурацию MTProto-клиента
type TelegramConfig struct {
	APIID       int
	APIHash     string
	Channel     string
	SessionFile string
	BatchSize   int
}

// OllamaConfig хранит конфигурацию генеративной модели
type OllamaConfig struct {
	APIURL      string
	Model       string
	Temperature float64
	TopP        float64
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	URL     string
	Enabled bool
}

// DBconfig хранит конфигурацию для БД
type DBconfig struct {
	URL string
}

type StdoutLogConfig struct {
	Level string `mapstructure:"STDOUT_LOG_LEVEL" default:"debug"` // По умолчанию DEBUG
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string `mapstructure:"FLUENTBIT_LOG_LEVEL" default:"info"` // По умолчанию INFO
}

// IngestConfig хранит параметры прохода по ленте
type IngestConfig struct {
	Interval  time.Duration // период между проходами
	Pace      time.Duration // пауза между сообщениями
	Lookback  time.Duration // глубина первого прохода
	Retention time.Duration // срок хранения записей
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	RestPort     string
	AuditLogPath string
	Database     DBconfig
	Telegram     TelegramConfig
	Ollama       OllamaConfig
	RabbitMQ     RabbitMQConfig
	Ingest       IngestConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {

	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}

	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v.\n", envPath, err)
		return nil, fmt.Errorf("сould not load .env file (path: %v): %v", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = os.Getenv("APP_NAME")
	if cfg.AppName == "" {
		cfg.AppName = "televito" // Устанавливаем default
	}

	cfg.RestPort = getEnvAsString("REST_PORT", "8080")
	cfg.AuditLogPath = getEnvAsString("AUDIT_LOG_PATH", "log.txt")

	// Читаем DATABASE URL
	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	// Читаем конфигурацию Telegram
	cfg.Telegram.APIID = getEnvAsInt("TG_API_ID", 0)
	if cfg.Telegram.APIID == 0 {
		return nil, fmt.Errorf("TG_API_ID environment variable is required")
	}
	cfg.Telegram.APIHash = os.Getenv("TG_API_HASH")
	if cfg.Telegram.APIHash == "" {
		return nil, fmt.Errorf("TG_API_HASH environment variable is required")
	}
	cfg.Telegram.Channel = os.Getenv("TG_CHANNEL")
	if cfg.Telegram.Channel == "" {
		return nil, fmt.Errorf("TG_CHANNEL environment variable is required")
	}
	cfg.Telegram.SessionFile = getEnvAsString("TG_SESSION_FILE", "televito.session")
	cfg.Telegram.BatchSize = getEnvAsInt("TG_BATCH_SIZE", 100)

	// Читаем конфигурацию генеративной модели
	cfg.Ollama.APIURL = getEnvAsString("OLLAMA_API_URL", "http://localhost:11434/api/chat")
	cfg.Ollama.Model = getEnvAsString("OLLAMA_MODEL", "llama3.1")
	cfg.Ollama.Temperature = getEnvAsFloat("OLLAMA_TEMPERATURE", 0.7)
	cfg.Ollama.TopP = getEnvAsFloat("OLLAMA_TOP_P", 0.9)

	// Читаем конфигурацию для RabbitMQ. Публикация событий опциональна.
	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			log.Println("WARNING: RABBITMQ_ENABLED is true, but RABBITMQ_URL is not set. Disabling event publishing.")
			cfg.RabbitMQ.Enabled = false
		}
	}

	// Читаем параметры прохода по ленте
	cfg.Ingest.Interval = getEnvAsDuration("INGEST_INTERVAL", 24*time.Hour)
	cfg.Ingest.Pace = getEnvAsDuration("INGEST_PACE", 70*time.Millisecond)
	cfg.Ingest.Lookback = getEnvAsDuration("INGEST_LOOKBACK", 365*24*time.Hour)
	cfg.Ingest.Retention = getEnvAsDuration("INGEST_RETENTION", 365*24*time.Hour)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsFloat читает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valFloat, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %g\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valFloat
}

// getEnvAsDuration читает переменную окружения как time.Duration ("70ms", "24h")
// или возвращает значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valDur, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valDur
}
