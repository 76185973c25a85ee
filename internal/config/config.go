// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// 各コンポーネントへは参照で渡し、環境変数のアドホックな読み取りは行わない。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionSecret string // セッションCookieのHMAC署名鍵
	SessionMaxAge int    // セッション有効期間（秒）

	// Password reset
	TokenSecret   string        // リセットトークン署名用のサーバーシークレット
	ResetTokenTTL time.Duration // リセットトークンの有効期間
	BcryptCost    int           // bcryptのコストファクター

	// Recipe API
	RecipeAPIKey     string
	RecipeAPIBaseURL string
	RecipeAPITimeout time.Duration

	// Mail
	SendGridAPIKey string
	MailFrom       string
	MailFromName   string

	// Rate Limit
	RateLimitGeneral    int // 認証済みAPI全般（req/min/user）
	RateLimitCredential int // ログイン・サインアップ・リセット要求（req/min/IP）

	// Worker
	SessionPurgeInterval time.Duration

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はまとめてエラーとして返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	if cfg.TokenSecret == "" {
		missing = append(missing, "TOKEN_SECRET")
	}

	cfg.RecipeAPIKey = os.Getenv("RECIPE_API_KEY")
	if cfg.RecipeAPIKey == "" {
		missing = append(missing, "RECIPE_API_KEY")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.ResetTokenTTL = getEnvDuration("RESET_TOKEN_TTL", 5*time.Minute)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 12)
	cfg.RecipeAPIBaseURL = getEnvString("RECIPE_API_BASE_URL", "https://api.spoonacular.com")
	cfg.RecipeAPITimeout = getEnvDuration("RECIPE_API_TIMEOUT", 10*time.Second)
	cfg.SendGridAPIKey = getEnvString("SENDGRID_API_KEY", "")
	cfg.MailFrom = getEnvString("MAIL_FROM", "noreply@kondate.example.com")
	cfg.MailFromName = getEnvString("MAIL_FROM_NAME", "Kondate")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitCredential = getEnvInt("RATE_LIMIT_CREDENTIAL", 10)
	cfg.SessionPurgeInterval = getEnvDuration("SESSION_PURGE_INTERVAL", 1*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
