package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"sahaayika/internal/logger"
)

// OCR engine selectors accepted by Config.OCREngine.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

type Config struct {
	// OCR Configuration
	OCREngine     string // tesseract or vision
	TesseractPath string
	OCRLanguages  string // tesseract -l value, e.g. "tam+eng"

	// Ollama Configuration
	OllamaURL     string
	OllamaModel   string
	OllamaTimeout time.Duration

	// Server Configuration
	ServerAddr string
	AudioDir   string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	timeoutSecs, err := getEnvInt("OLLAMA_TIMEOUT_SECONDS", 200)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	config := &Config{
		OCREngine:     getEnv("OCR_ENGINE", EngineTesseract),
		TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),
		OCRLanguages:  getEnv("OCR_LANGUAGES", "tam+eng"),
		OllamaURL:     getEnv("OLLAMA_URL", "http://localhost:11434/api/generate"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "gemma3n:latest"),
		OllamaTimeout: time.Duration(timeoutSecs) * time.Second,
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		AudioDir:      getEnv("AUDIO_DIR", "."),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.OCREngine != EngineTesseract && c.OCREngine != EngineVision {
		return fmt.Errorf("OCR_ENGINE must be %q or %q, got %q", EngineTesseract, EngineVision, c.OCREngine)
	}
	if c.OCREngine == EngineTesseract && c.TesseractPath == "" {
		return fmt.Errorf("TESSERACT_PATH is required for the tesseract engine")
	}
	if c.OllamaURL == "" {
		return fmt.Errorf("OLLAMA_URL is required")
	}
	if c.OllamaModel == "" {
		return fmt.Errorf("OLLAMA_MODEL is required")
	}
	if c.OllamaTimeout <= 0 {
		return fmt.Errorf("OLLAMA_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
