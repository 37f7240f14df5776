package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"hostel-mcp/internal/narrative"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath            string
	LogDir              string
	ReportDir           string
	HTTPAddr            string
	ReadTimeout         time.Duration
	EnableMermaidCharts bool
	AnalyzeConcurrency  int
	Thresholds          narrative.Thresholds
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	reportDir := filepath.Join(dataPath, "reports")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	cfg := &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		ReportDir:           reportDir,
		HTTPAddr:            getEnv("HTTP_ADDR", ":3000"),
		ReadTimeout:         time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)) * time.Second,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		AnalyzeConcurrency:  getEnvInt("ANALYZE_CONCURRENCY", 4),
		Thresholds:          loadThresholds(),
	}
	if cfg.AnalyzeConcurrency < 1 {
		cfg.AnalyzeConcurrency = 1
	}

	return cfg, nil
}

// loadThresholds overlays THRESHOLD_* variables on the stock narrative gates.
func loadThresholds() narrative.Thresholds {
	th := narrative.DefaultThresholds()

	th.WeekendFriday = getEnvFloat("THRESHOLD_ON_LEAVE_FRIDAY", th.WeekendFriday)
	th.WeekendSaturday = getEnvFloat("THRESHOLD_ON_LEAVE_SATURDAY", th.WeekendSaturday)
	th.LeaveMonth = getEnvInt("THRESHOLD_ON_LEAVE_MONTH", th.LeaveMonth)
	th.LeaveStreak = getEnvInt("THRESHOLD_ON_LEAVE_STREAK", th.LeaveStreak)

	th.LateWeekday = getEnvFloat("THRESHOLD_LATE_WEEKDAY", th.LateWeekday)
	th.LateMonth = getEnvInt("THRESHOLD_LATE_MONTH", th.LateMonth)

	th.NonCheckedInWeekday = getEnvFloat("THRESHOLD_NON_CHECKED_IN_WEEKDAY", th.NonCheckedInWeekday)
	th.NonCheckedInMonth = getEnvInt("THRESHOLD_NON_CHECKED_IN_MONTH", th.NonCheckedInMonth)

	th.PlannedWeekday = getEnvFloat("THRESHOLD_PLANNED_WEEKDAY", th.PlannedWeekday)
	th.PlannedMonth = getEnvFloat("THRESHOLD_PLANNED_MONTH", th.PlannedMonth)

	return th
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer configuration value")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric configuration value")
	}
	return fallback
}
