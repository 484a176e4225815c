package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	MachineryFile    string  // внешний machinery.yaml (алиасы + критичные), пусто = встроенный
	SubsystemsFile   string  // внешний subsystems.yaml, пусто = встроенный
	HeaderRow        int     // строка заголовков выгрузки (1-based)
	SuggestThreshold float64 // порог похожести для подсказок different -> missing
}

func Load() Config {
	_ = godotenv.Load()

	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         getenvInt("PORT", 8082),
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MaxUploadMB:  getenvInt("MAX_UPLOAD_MB", 64),
		LogFile:      getenv("LOG_FILE", "logs/machinery-service.log"),

		MachineryFile:    getenv("MACHINERY_FILE", ""),
		SubsystemsFile:   getenv("SUBSYSTEMS_FILE", ""),
		HeaderRow:        getenvInt("HEADER_ROW", 1),
		SuggestThreshold: getenvFloat("SUGGEST_THRESHOLD", 0.8),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v, err := strconv.Atoi(getenv(k, ""))
	if err != nil {
		return def
	}
	return v
}

func getenvFloat(k string, def float64) float64 {
	v, err := strconv.ParseFloat(getenv(k, ""), 64)
	if err != nil {
		return def
	}
	return v
}
