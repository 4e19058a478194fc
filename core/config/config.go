package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App   AppConfig
	Paths PathsConfig
	Media MediaConfig
	Cache CacheConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	CorsAllowedOrigins []string
}

type PathsConfig struct {
	Statics string
	Cache   string
}

type MediaConfig struct {
	// AllowedDomains is the upstream CDN allow-list. A listed domain
	// also matches its subdomains.
	AllowedDomains []string
	FetchTimeout   time.Duration
	UserAgent      string
	Referer        string
	DefaultQuality int
	// PlaceholderPath is where failed requests are redirected to.
	PlaceholderPath string
}

type CacheConfig struct {
	// MaxBytes is the on-disk byte budget for transformed images.
	MaxBytes int64
	// TargetRatio is the fraction of MaxBytes eviction shrinks to.
	TargetRatio float64
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	debug := getEnvBool("APP_DEBUG", false)

	var basicAuth []string
	if v := getEnv("APP_BASIC_AUTH", ""); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := getEnv("APP_CORS_ALLOWED_ORIGINS", ""); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.3.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		CorsAllowedOrigins: corsOrigins,
	}
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		Statics: getEnv("PATH_STATICS", "statics"),
		Cache:   getEnv("PATH_MEDIA_CACHE", filepath.Join("statics", "cache", "media")),
	}

	// Defaults cover the CDNs the catalog importer currently sources
	// product images from.
	allowed := []string{"cjdropshipping.com", "alicdn.com", "aliexpress-media.com", "cloudfront.net"}
	if v := getEnv("MEDIA_ALLOWED_DOMAINS", ""); v != "" {
		allowed = strings.Split(v, ",")
	}

	mediaCfg := MediaConfig{
		AllowedDomains: allowed,
		FetchTimeout:   time.Duration(getEnvInt("MEDIA_FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		UserAgent: getEnv("MEDIA_USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),
		Referer:         getEnv("MEDIA_REFERER", "https://www.cjdropshipping.com/"),
		DefaultQuality:  getEnvInt("MEDIA_DEFAULT_QUALITY", 72),
		PlaceholderPath: getEnv("MEDIA_PLACEHOLDER_PATH", "/statics/placeholder.webp"),
	}

	cacheCfg := CacheConfig{
		MaxBytes:    getEnvInt64("MEDIA_CACHE_MAX_BYTES", 512*1024*1024),
		TargetRatio: getEnvFloat("MEDIA_CACHE_TARGET_RATIO", 0.8),
	}

	cfg := &Config{
		App:   appCfg,
		Paths: pathsCfg,
		Media: mediaCfg,
		Cache: cacheCfg,
	}

	Global = cfg
	return cfg, nil
}
