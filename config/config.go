package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"plantify/internal/domain/entity"
)

// GeminiConfig параметры сервиса распознавания.
type GeminiConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
}

// CameraConfig параметры захвата с камеры.
type CameraConfig struct {
	Enabled bool          `yaml:"enabled"`
	Device  int           `yaml:"device"`
	Warmup  time.Duration `yaml:"warmup"`
}

// LoggingConfig параметры логирования.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Pretty     bool   `yaml:"pretty"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type Config struct {
	Gemini          GeminiConfig  `yaml:"gemini"`
	Camera          CameraConfig  `yaml:"camera"`
	Logging         LoggingConfig `yaml:"logging"`
	IdentifyTimeout time.Duration `yaml:"identify_timeout"`
	MaxImageSize    string        `yaml:"max_image_size"` // например "20MB"
	TelegramToken   string        `yaml:"telegram_token"`
	MetricsAddr     string        `yaml:"metrics_addr"`
}

// Default значения по умолчанию.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{Model: "gemini-1.5-flash"},
		Camera: CameraConfig{Device: 0, Warmup: time.Second},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		IdentifyTimeout: 60 * time.Second,
		MaxImageSize:    "20MB",
		MetricsAddr:     ":9090",
	}
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("PLANTIFY_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// mergeFile накладывает YAML-файл поверх текущих значений.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv переопределяет значения переменными окружения, если они заданы.
func (c *Config) applyEnv() {
	c.Gemini.APIKey = getEnv("GOOGLE_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)
	c.Gemini.Endpoint = getEnv("GEMINI_ENDPOINT", c.Gemini.Endpoint)

	if v, ok := os.LookupEnv("CAMERA_ENABLED"); ok {
		c.Camera.Enabled = parseBool(v)
	}
	c.Camera.Device = parseInt(os.Getenv("CAMERA_DEVICE"), c.Camera.Device)
	c.Camera.Warmup = parseDuration(os.Getenv("CAMERA_WARMUP"), c.Camera.Warmup)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	if v, ok := os.LookupEnv("LOG_PRETTY"); ok {
		c.Logging.Pretty = parseBool(v)
	}
	c.Logging.File = getEnv("LOG_FILE", c.Logging.File)
	c.Logging.MaxSizeMB = parseInt(os.Getenv("LOG_MAX_SIZE_MB"), c.Logging.MaxSizeMB)
	c.Logging.MaxBackups = parseInt(os.Getenv("LOG_MAX_BACKUPS"), c.Logging.MaxBackups)
	c.Logging.MaxAgeDays = parseInt(os.Getenv("LOG_MAX_AGE_DAYS"), c.Logging.MaxAgeDays)
	if v, ok := os.LookupEnv("LOG_COMPRESS"); ok {
		c.Logging.Compress = parseBool(v)
	}

	c.IdentifyTimeout = parseDuration(os.Getenv("IDENTIFY_TIMEOUT"), c.IdentifyTimeout)
	c.MaxImageSize = getEnv("MAX_IMAGE_SIZE", c.MaxImageSize)
	c.TelegramToken = getEnv("TELEGRAM_TOKEN", c.TelegramToken)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)
}

// Validate проверяет обязательные параметры. Без ключа запуск невозможен.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("%w: GOOGLE_API_KEY is required", entity.ErrCredentialMissing)
	}
	if c.IdentifyTimeout < 0 {
		return fmt.Errorf("IDENTIFY_TIMEOUT must not be negative, got %s", c.IdentifyTimeout)
	}
	if _, err := c.MaxImageBytes(); err != nil {
		return err
	}
	return nil
}

// MaxImageBytes предел размера изображения в байтах, 0 означает без ограничения.
func (c *Config) MaxImageBytes() (int64, error) {
	if strings.TrimSpace(c.MaxImageSize) == "" {
		return 0, nil
	}
	n, err := units.FromHumanSize(c.MaxImageSize)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_IMAGE_SIZE %q: %w", c.MaxImageSize, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("MAX_IMAGE_SIZE must not be negative, got %q", c.MaxImageSize)
	}
	return n, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	// Целое число трактуется как миллисекунды.
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
