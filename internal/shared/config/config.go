package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	PublicOrigin    string
	CORSAllowOrigin []string
	DefaultLanguage string

	DatabaseURL string
	AutoMigrate bool

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	SSEKMSKeyID     string

	LLMProvider    string
	LLMModel       string
	LLMAPIKey      string
	LLMBaseURL     string
	LLMTimeout     time.Duration
	LLMAppReferer  string
	LLMAppTitle    string
	ChargeMode     string
	SignupCredits  int
	AlertTransport string
	SQSQueueURL    string
	AMQPURL        string
	AMQPQueue      string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceStarter  string
	StripePricePro      string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	ChromeEnabled bool
	ChromePath    string

	RateLimitAI          float64
	RateLimitAIBurst     int
	RateLimitExport      float64
	RateLimitExportBurst int
	RateLimitDefault     float64
	RateLimitBurst       int

	JWTSecret          string
	JWTTTL             time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from environment variables with sensible defaults.
// Local .env files are loaded first when present; real environment values win.
func Load() Config {
	for _, path := range []string{".env", "cmd/.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				log.Printf("load %s: %v", path, err)
			}
		}
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		PublicOrigin:    strings.TrimRight(getEnv("PUBLIC_ORIGIN", "http://localhost:5173"), "/"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DefaultLanguage: normalizeLanguage(getEnv("DEFAULT_LANGUAGE", "en")),

		DatabaseURL: dbURL,
		AutoMigrate: getBool("DB_AUTO_MIGRATE", true),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		LLMProvider:    normalizeProvider(getEnv("LLM_PROVIDER", "openrouter")),
		LLMModel:       getEnv("LLM_MODEL", ""),
		LLMAPIKey:      firstEnv("LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY"),
		LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
		LLMTimeout:     time.Duration(getInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		LLMAppReferer:  getEnv("LLM_APP_REFERER", ""),
		LLMAppTitle:    getEnv("LLM_APP_TITLE", "Resume Builder"),
		ChargeMode:     normalizeChargeMode(getEnv("CREDIT_CHARGE_MODE", "on_success")),
		SignupCredits:  getInt("SIGNUP_CREDITS", 3),
		AlertTransport: normalizeAlertTransport(getEnv("ALERT_TRANSPORT", "log")),
		SQSQueueURL:    getEnv("ALERT_SQS_QUEUE_URL", ""),
		AMQPURL:        getEnv("ALERT_AMQP_URL", ""),
		AMQPQueue:      getEnv("ALERT_AMQP_QUEUE", "credit-alerts"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceStarter:  getEnv("STRIPE_PRICE_STARTER", ""),
		StripePricePro:      getEnv("STRIPE_PRICE_PRO", ""),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", ""),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", ""),

		ChromeEnabled: getBool("CHROME_ENABLED", false),
		ChromePath:    getEnv("CHROME_PATH", ""),

		RateLimitAI:          getFloat("RATE_LIMIT_AI_PER_SEC", 0.5),
		RateLimitAIBurst:     getInt("RATE_LIMIT_AI_BURST", 5),
		RateLimitExport:      getFloat("RATE_LIMIT_EXPORT_PER_SEC", 1),
		RateLimitExportBurst: getInt("RATE_LIMIT_EXPORT_BURST", 10),
		RateLimitDefault:     getFloat("RATE_LIMIT_DEFAULT_PER_SEC", 10),
		RateLimitBurst:       getInt("RATE_LIMIT_DEFAULT_BURST", 40),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             time.Duration(getInt("JWT_TTL_HOURS", 168)) * time.Hour,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, raw, def)
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3", "r2":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "gemini", "google":
		return "gemini"
	case "none", "off":
		return "none"
	default:
		return "openrouter"
	}
}

func normalizeChargeMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "reserve", "reserve_then_refund", "pre":
		return "reserve"
	default:
		return "on_success"
	}
}

func normalizeAlertTransport(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sqs":
		return "sqs"
	case "amqp", "rabbitmq":
		return "amqp"
	default:
		return "log"
	}
}

func normalizeLanguage(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "th") {
		return "th"
	}
	return "en"
}
