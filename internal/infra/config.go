package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	DashScopeAPIKey             string
	DashScopeBaseURL            string
	DashScopeModel              string
	DashScopeStyleTransferModel string
	DashScopeBodyFormat         string
	DashScopeTimeout            time.Duration

	PersistImages   bool
	FallbackEnabled bool
	StorageBackend  string
	GeneratedDir    string
	UploadDir       string
	PlaceholderDir  string
	PlaceholderURL  string
	StaticDir       string
	UploadMaxBytes  int64

	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioBucket        string
	MinioUseSSL        bool
	MinioPublicBaseURL string

	DatabaseURL   string
	GeoIPDBPath   string
	DefaultLocale string

	CORSAllowedOrigins []string
	RateLimitPerMin    int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

const (
	StorageBackendFilesystem = "filesystem"
	StorageBackendMinio      = "minio"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// A missing DashScope key is not an error: requests report it individually.
func LoadConfig() (*Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("DASHSCOPE_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("ALIBABA_API_KEY"))
	}
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "3000"),

		DashScopeAPIKey:             apiKey,
		DashScopeBaseURL:            getEnv("DASHSCOPE_BASE_URL", "https://dashscope.aliyuncs.com/api/v1"),
		DashScopeModel:              getEnv("DASHSCOPE_MODEL", "wanx-v1"),
		DashScopeStyleTransferModel: getEnv("DASHSCOPE_STYLE_TRANSFER_MODEL", "wanx-style-transfer-v1"),
		DashScopeBodyFormat:         getEnv("DASHSCOPE_BODY_FORMAT", "dimensions"),
		DashScopeTimeout:            time.Second * time.Duration(getEnvInt("DASHSCOPE_TIMEOUT_SECONDS", 60)),

		PersistImages:   getEnvBool("PERSIST_IMAGES", true),
		FallbackEnabled: getEnvBool("FALLBACK_ENABLED", true),
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendFilesystem)),
		GeneratedDir:    getEnv("GENERATED_DIR", "./generated"),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		PlaceholderDir:  getEnv("PLACEHOLDER_DIR", "./img"),
		PlaceholderURL:  getEnv("PLACEHOLDER_URL", "/img/hero-illustration.png"),
		StaticDir:       getEnv("STATIC_DIR", "./public"),
		UploadMaxBytes:  int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),

		MinioEndpoint:      os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:     os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:        getEnv("MINIO_BUCKET", "artstudio"),
		MinioUseSSL:        getEnvBool("MINIO_USE_SSL", false),
		MinioPublicBaseURL: os.Getenv("MINIO_PUBLIC_BASE_URL"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "zh"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.StorageBackend != StorageBackendFilesystem && cfg.StorageBackend != StorageBackendMinio {
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q", StorageBackendFilesystem, StorageBackendMinio)
	}
	if cfg.StorageBackend == StorageBackendMinio && cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_BACKEND=minio")
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	return cfg, nil
}

// HasDashScopeKey reports whether outbound generation can be attempted.
func (c *Config) HasDashScopeKey() bool {
	return c != nil && c.DashScopeAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
