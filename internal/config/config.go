package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port string

	StoreBackend string
	DatabaseURL  string
	SQLitePath   string
	MongoURI     string
	MongoDB      string

	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIMaxTokens int64
	OpenAITimeout   time.Duration

	PushProvider        string
	FirebaseProjectID   string
	FirebaseClientEmail string
	FirebasePrivateKey  string

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string

	DispatchSchedule string
	DispatchBatch    int

	LogLevel  string
	LogFormat string
}

const (
	BackendSQL   = "sql"
	BackendMongo = "mongo"

	PushFCM      = "fcm"
	PushWhatsApp = "whatsapp"
	PushLog      = "log"
)

var defaults = map[string]any{
	"PORT":              "8080",
	"STORE_BACKEND":     BackendSQL,
	"SQLITE_PATH":       "reminders.db",
	"MONGO_DB":          "chatmemo",
	"OPENAI_MODEL":      "gpt-4o-mini",
	"OPENAI_MAX_TOKENS": 100,
	"OPENAI_TIMEOUT":    "20s",
	"DISPATCH_SCHEDULE": "* * * * *",
	"DISPATCH_BATCH":    100,
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "text",
}

// Load reads configuration values and prepares defaults where applicable.
// A .env file in the working directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:                 v.GetString("PORT"),
		StoreBackend:         strings.ToLower(v.GetString("STORE_BACKEND")),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		SQLitePath:           v.GetString("SQLITE_PATH"),
		MongoURI:             v.GetString("MONGO_URI"),
		MongoDB:              v.GetString("MONGO_DB"),
		OpenAIAPIKey:         v.GetString("OPENAI_API_KEY"),
		OpenAIModel:          v.GetString("OPENAI_MODEL"),
		OpenAIMaxTokens:      v.GetInt64("OPENAI_MAX_TOKENS"),
		OpenAITimeout:        v.GetDuration("OPENAI_TIMEOUT"),
		PushProvider:         strings.ToLower(v.GetString("PUSH_PROVIDER")),
		FirebaseProjectID:    v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseClientEmail:  v.GetString("FIREBASE_CLIENT_EMAIL"),
		FirebasePrivateKey:   strings.ReplaceAll(v.GetString("FIREBASE_PRIVATE_KEY"), `\n`, "\n"),
		TwilioAccountSID:     v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppNumber: v.GetString("TWILIO_WHATSAPP_NUMBER"),
		DispatchSchedule:     v.GetString("DISPATCH_SCHEDULE"),
		DispatchBatch:        v.GetInt("DISPATCH_BATCH"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	if cfg.StoreBackend != BackendSQL && cfg.StoreBackend != BackendMongo {
		logrus.Warnf("config: unknown STORE_BACKEND %q, using %s", cfg.StoreBackend, BackendSQL)
		cfg.StoreBackend = BackendSQL
	}
	if cfg.StoreBackend == BackendMongo && cfg.MongoURI == "" {
		logrus.Warn("config: STORE_BACKEND=mongo without MONGO_URI, using mongodb://localhost:27017")
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.OpenAIMaxTokens <= 0 {
		logrus.Warnf("config: invalid OPENAI_MAX_TOKENS, defaulting to %d", defaults["OPENAI_MAX_TOKENS"])
		cfg.OpenAIMaxTokens = 100
	}
	if cfg.OpenAITimeout <= 0 {
		cfg.OpenAITimeout = 20 * time.Second
	}
	if cfg.DispatchBatch <= 0 {
		cfg.DispatchBatch = 100
	}
	cfg.PushProvider = resolvePushProvider(cfg)

	return cfg
}

// resolvePushProvider falls back to log delivery when the requested
// provider has no credentials. An empty provider picks whatever is configured.
func resolvePushProvider(cfg *Config) string {
	hasFCM := cfg.FirebaseProjectID != "" && cfg.FirebaseClientEmail != "" && cfg.FirebasePrivateKey != ""
	hasTwilio := cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioWhatsAppNumber != ""

	switch cfg.PushProvider {
	case PushFCM:
		if hasFCM {
			return PushFCM
		}
		logrus.Warn("config: PUSH_PROVIDER=fcm but Firebase credentials are incomplete, using log delivery")
		return PushLog
	case PushWhatsApp:
		if hasTwilio {
			return PushWhatsApp
		}
		logrus.Warn("config: PUSH_PROVIDER=whatsapp but Twilio credentials are incomplete, using log delivery")
		return PushLog
	case PushLog:
		return PushLog
	case "":
	default:
		logrus.Warnf("config: unknown PUSH_PROVIDER %q", cfg.PushProvider)
	}

	switch {
	case hasFCM:
		return PushFCM
	case hasTwilio:
		return PushWhatsApp
	default:
		return PushLog
	}
}

// NewLogger builds the root logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg *Config) *logrus.Entry {
	logger := logrus.New()
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("config: invalid LOG_LEVEL %q, defaulting to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger.WithField("app", "chatmemo")
}
