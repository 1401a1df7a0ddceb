package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"restaurant-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const defaultJWTSecret = "restaurant_super_secret_2025"

// JWTSecret used to sign tokens. Load replaces the fallback with the configured value.
var JWTSecret = []byte(defaultJWTSecret)

// Settings is the runtime configuration. Values come from the environment
// (optionally a .env file), then a YAML file named by CONFIG_FILE overrides them.
type Settings struct {
	Port        string `yaml:"port"`
	JWTSecret   string `yaml:"jwt_secret"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	RedisURL    string `yaml:"redis_url"`
	// StateTTL expires idle client state; zero keeps it forever
	StateTTL time.Duration `yaml:"state_ttl"`

	StripeSecretKey string `yaml:"stripe_secret_key"`
	Currency        string `yaml:"currency"`

	KafkaBrokers string `yaml:"kafka_brokers"`
	KafkaTopic   string `yaml:"kafka_topic"`

	EmailJS EmailJSSettings `yaml:"emailjs"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	// InquiryRate is the per-client inquiry submissions allowed per minute
	InquiryRate  float64 `yaml:"inquiry_rate"`
	InquiryBurst int     `yaml:"inquiry_burst"`

	OTelStdout bool `yaml:"otel_stdout"`
}

type EmailJSSettings struct {
	ServiceID            string `yaml:"service_id"`
	PublicKey            string `yaml:"public_key"`
	AccessToken          string `yaml:"access_token"`
	StatusTemplateID     string `yaml:"status_template_id"`
	InquiryReplyTemplate string `yaml:"inquiry_reply_template_id"`
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// Load reads .env (if present), the environment and the optional YAML overlay
func Load() (*Settings, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("📄 Loaded environment from .env")
	}

	ttl, err := time.ParseDuration(getEnv("STATE_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATE_TTL: %w", err)
	}

	s := &Settings{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      getEnv("SQLITE_PATH", "restaurant.db"),
		RedisURL:        os.Getenv("REDIS_URL"),
		StateTTL:        ttl,
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		Currency:        getEnv("CURRENCY", "aud"),
		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "order-status"),
		EmailJS: EmailJSSettings{
			ServiceID:            os.Getenv("EMAILJS_SERVICE_ID"),
			PublicKey:            os.Getenv("EMAILJS_PUBLIC_KEY"),
			AccessToken:          os.Getenv("EMAILJS_ACCESS_TOKEN"),
			StatusTemplateID:     os.Getenv("EMAILJS_STATUS_TEMPLATE_ID"),
			InquiryReplyTemplate: os.Getenv("EMAILJS_INQUIRY_TEMPLATE_ID"),
		},
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		InquiryRate:    getEnvFloat("INQUIRY_RATE", 5),
		InquiryBurst:   getEnvInt("INQUIRY_BURST", 3),
		OTelStdout:     getEnv("OTEL_STDOUT", "false") == "true",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := s.overlay(path); err != nil {
			return nil, err
		}
	}
	if s.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret must not be empty")
	}
	JWTSecret = []byte(s.JWTSecret)
	return s, nil
}

// overlay replaces every field the YAML file sets
func (s *Settings) overlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	log.Printf("📄 Loaded configuration overlay from %s", path)
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Open connects to Postgres when databaseURL is set, SQLite at sqlitePath otherwise
func Open(databaseURL, sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if databaseURL != "" {
		return gorm.Open(postgres.Open(databaseURL), cfg)
	}
	return gorm.Open(sqlite.Open(sqlitePath), cfg)
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Notification{},
		&models.CardDetails{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentRecord{},
		&models.Inquiry{},
		&models.RespondedInquiry{},
	)
}

func InitDB(s *Settings) {
	var err error
	DB, err = Open(s.DatabaseURL, s.SQLitePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("✅ Database connected and migrated successfully")
}

// OpenTestDB returns a migrated in-memory SQLite database
func OpenTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// each connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
