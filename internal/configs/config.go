package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// PathsConfig - файлы и каталоги трекера
type PathsConfig struct {
	Keys      string
	State     string
	Artifacts string
}

// PollingConfig - параметры цикла опроса
type PollingConfig struct {
	Interval            time.Duration
	StalenessMultiplier int
	FetchTimeout        time.Duration
	RequestRandomDelay  time.Duration
	MaxPagesPerSearch   int
}

// StalenessThreshold - сколько объявление может не встречаться, прежде чем считаться усыновленным
func (p PollingConfig) StalenessThreshold() time.Duration {
	return p.Interval * time.Duration(p.StalenessMultiplier)
}

// OutputConfig - консольный вывод и артефакты
type OutputConfig struct {
	DownloadPhotos bool
	AlertBells     int
	ShowCountdown  bool
}

// ArchiveConfig - дополнительные хранилища артефактов. Пустая строка отключает хранилище.
type ArchiveConfig struct {
	DatabaseURL string
	SQLitePath  string
}

type StdoutLogConfig struct {
	Level string
	JSON  bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Paths        PathsConfig
	Polling      PollingConfig
	Output       OutputConfig
	Archive      ArchiveConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env по умолчанию необязателен, явно указанный путь - обязателен.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else if err = godotenv.Load(); errors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "adoption-tracker-service")

	cfg.Paths.Keys = getEnvAsString("KEYS_PATH", "keys.json")
	cfg.Paths.State = getEnvAsString("STATE_PATH", "state.json")
	cfg.Paths.Artifacts = getEnvAsString("ARTIFACTS_DIR", "dogs")

	cfg.Polling.Interval = getEnvAsDuration("POLL_INTERVAL", 30*time.Second)
	cfg.Polling.StalenessMultiplier = getEnvAsInt("STALENESS_MULTIPLIER", 4)
	cfg.Polling.FetchTimeout = getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second)
	cfg.Polling.RequestRandomDelay = getEnvAsDuration("REQUEST_RANDOM_DELAY", 0)
	cfg.Polling.MaxPagesPerSearch = getEnvAsInt("MAX_PAGES_PER_SEARCH", 50)

	cfg.Output.DownloadPhotos = getEnvAsBool("DOWNLOAD_PHOTOS", true)
	cfg.Output.AlertBells = getEnvAsInt("ALERT_BELLS", 5)
	cfg.Output.ShowCountdown = getEnvAsBool("SHOW_COUNTDOWN", true)

	cfg.Archive.DatabaseURL = os.Getenv("ARCHIVE_DATABASE_URL")
	cfg.Archive.SQLitePath = os.Getenv("ARCHIVE_SQLITE_PATH")

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

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "info")
	cfg.StdoutLogger.JSON = getEnvAsBool("LOG_JSON", false)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, при которых трекер не может работать корректно
func (c *AppConfig) Validate() error {
	if c.Polling.Interval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.Polling.Interval)
	}
	// при множителе меньше 2 один медленный цикл уже выглядит как усыновление
	if c.Polling.StalenessMultiplier < 2 {
		return fmt.Errorf("STALENESS_MULTIPLIER must be at least 2, got %d", c.Polling.StalenessMultiplier)
	}
	if c.Polling.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.Polling.FetchTimeout)
	}
	if c.Polling.RequestRandomDelay < 0 {
		return fmt.Errorf("REQUEST_RANDOM_DELAY must not be negative, got %s", c.Polling.RequestRandomDelay)
	}
	if c.Polling.MaxPagesPerSearch <= 0 {
		return fmt.Errorf("MAX_PAGES_PER_SEARCH must be positive, got %d", c.Polling.MaxPagesPerSearch)
	}
	if c.Output.AlertBells < 0 {
		return fmt.Errorf("ALERT_BELLS must not be negative, got %d", c.Output.AlertBells)
	}
	if c.Paths.Keys == "" || c.Paths.State == "" || c.Paths.Artifacts == "" {
		return fmt.Errorf("KEYS_PATH, STATE_PATH and ARTIFACTS_DIR must not be empty")
	}
	return nil
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

// getEnvAsDuration принимает "30s", "1m30s" или целое число секунд
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}
