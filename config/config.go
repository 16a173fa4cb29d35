package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"outreachsim/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

// WarmupConfig bounds the per-sender daily volume ramp.
type WarmupConfig struct {
	StartVolume int `json:"start_volume"`
	MaxVolume   int `json:"max_volume"`
	RampDays    int `json:"ramp_days"`
}

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`

	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"-"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_ssl_mode"`

	Warmup               WarmupConfig `json:"warmup"`
	TicksPerDay          int          `json:"ticks_per_day"`
	CycleIntervalSeconds int          `json:"cycle_interval_seconds"`
	UnsubscribeBaseURL   string       `json:"unsubscribe_base_url"`

	SentryDSN       string      `json:"-"`
	Redis           RedisConfig `json:"redis"`
	RateLimitPublic int         `json:"rate_limit_public"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "5000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "outreachsim"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		Warmup: WarmupConfig{
			StartVolume: getEnvAsInt("DAILY_WARMUP_START", 5),
			MaxVolume:   getEnvAsInt("DAILY_WARMUP_MAX", 150),
			RampDays:    getEnvAsInt("WARMUP_RAMP_DAYS", 30),
		},
		TicksPerDay:          getEnvAsInt("TICKS_PER_DAY", 12),
		CycleIntervalSeconds: getEnvAsInt("CYCLE_INTERVAL_SECONDS", 10),
		UnsubscribeBaseURL:   getEnv("UNSUBSCRIBE_BASE_URL", "http://localhost:5000"),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimitPublic: getEnvAsInt("RATE_LIMIT_PUBLIC", 30),
	}

	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.Warmup.StartVolume < 1 || AppConfig.Warmup.MaxVolume < AppConfig.Warmup.StartVolume {
		return fmt.Errorf("invalid warmup volume bounds: start=%d max=%d",
			AppConfig.Warmup.StartVolume, AppConfig.Warmup.MaxVolume)
	}
	if AppConfig.TicksPerDay < 1 {
		return fmt.Errorf("TICKS_PER_DAY must be at least 1")
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("Successfully connected to the database")
	if err := migrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

func migrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SenderAccount{},
		&models.Recipient{},
		&models.Campaign{},
		&models.EmailSend{},
		&models.EngagementEvent{},
	)
}

// Helper functions

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	return strings.EqualFold(valueStr, "true") || valueStr == "1"
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Warmup: start=%d max=%d ramp=%d days, %d ticks/day",
		AppConfig.Warmup.StartVolume,
		AppConfig.Warmup.MaxVolume,
		AppConfig.Warmup.RampDays,
		AppConfig.TicksPerDay)
}
