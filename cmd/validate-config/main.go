package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/diabetes-companion/internal/config"
)

func main() {
	fmt.Println("🔍 Проверка конфигурации...")

	// Загружаем .env файл если есть
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env файл не найден: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Ошибка валидации конфигурации:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Конфигурация валидна!")
	printConfig(os.Stdout, cfg)
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "📋 Детали конфигурации:\n")
	fmt.Fprintf(w, "  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Fprintf(w, "  - Gemini API Key: %s\n", maskToken(cfg.GeminiAPIKey))
	fmt.Fprintf(w, "  - OpenAI API Key: %s\n", maskToken(cfg.OpenAIAPIKey))
	if cfg.OpenAIBaseURL != "" {
		fmt.Fprintf(w, "  - OpenAI Base URL: %s\n", cfg.OpenAIBaseURL)
	}
	fmt.Fprintf(w, "  - Default Timezone: %s\n", cfg.DefaultTimezone)
	fmt.Fprintf(w, "  - Watch Interval: %s\n", cfg.WatchInterval)
	fmt.Fprintf(w, "  - DB Driver: %s\n", cfg.DB.Driver)
	if cfg.DB.Driver == "sqlite" {
		fmt.Fprintf(w, "  - DB Path: %s\n", cfg.DB.Path)
	} else {
		fmt.Fprintf(w, "  - DB Host: %s\n", cfg.DB.Host)
		fmt.Fprintf(w, "  - DB Port: %s\n", cfg.DB.Port)
		fmt.Fprintf(w, "  - DB User: %s\n", cfg.DB.User)
		fmt.Fprintf(w, "  - DB Name: %s\n", cfg.DB.DBName)
	}
	if cfg.Redis.Enabled() {
		fmt.Fprintf(w, "  - Redis: %s (db %d)\n", cfg.Redis.Addr(), cfg.Redis.DB)
	} else {
		fmt.Fprintf(w, "  - Redis: <не используется>\n")
	}
	if cfg.HTTP.Addr != "" {
		fmt.Fprintf(w, "  - HTTP Addr: %s\n", cfg.HTTP.Addr)
		fmt.Fprintf(w, "  - CORS Origins: %s\n", strings.Join(cfg.HTTP.AllowedOrigins, ", "))
		fmt.Fprintf(w, "  - JWT Secret: %s\n", maskToken(cfg.Auth.JWTSecret))
		fmt.Fprintf(w, "  - JWT TTL: %s\n", cfg.Auth.TokenTTL)
	} else {
		fmt.Fprintf(w, "  - HTTP API: <выключен>\n")
	}
	fmt.Fprintf(w, "  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Fprintf(w, "  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Fprintf(w, "  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<не установлен>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
