package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
	Fare     FareConfig
	Booking  BookingConfig
	Session  SessionConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	MetricsEnabled bool
	CORSOrigins    []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	URL string
}

// LedgerConfig selects where committed seat counts live: memory, postgres or redis.
type LedgerConfig struct {
	Backend string
}

type FareConfig struct {
	Policy          string
	BaseFarePerSeat decimal.Decimal
	ChildAge        int
	ChildRate       decimal.Decimal
	SeniorAge       int
	SeniorRate      decimal.Decimal
}

type BookingConfig struct {
	WaitlistEnabled bool
	SeatLabelPrefix string
}

type SessionConfig struct {
	ExpiryHours int
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "railway-booking")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("LEDGER_BACKEND", "postgres")
	v.SetDefault("FARE_POLICY", "flat")
	v.SetDefault("FARE_BASE_PER_SEAT", "50.00")
	v.SetDefault("FARE_CHILD_AGE", 12)
	v.SetDefault("FARE_CHILD_RATE", "0.5")
	v.SetDefault("FARE_SENIOR_AGE", 60)
	v.SetDefault("FARE_SENIOR_RATE", "0.6")
	v.SetDefault("BOOKING_WAITLIST_ENABLED", false)
	v.SetDefault("SEAT_LABEL_PREFIX", "A")
	v.SetDefault("SESSION_EXPIRY_HOURS", 24)

	// .env is optional, the process environment always wins
	if _, err := os.Stat(".env"); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	v.AutomaticEnv()

	baseFare, err := decimal.NewFromString(v.GetString("FARE_BASE_PER_SEAT"))
	if err != nil {
		return nil, fmt.Errorf("parse FARE_BASE_PER_SEAT: %w", err)
	}
	childRate, err := decimal.NewFromString(v.GetString("FARE_CHILD_RATE"))
	if err != nil {
		return nil, fmt.Errorf("parse FARE_CHILD_RATE: %w", err)
	}
	seniorRate, err := decimal.NewFromString(v.GetString("FARE_SENIOR_RATE"))
	if err != nil {
		return nil, fmt.Errorf("parse FARE_SENIOR_RATE: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:           v.GetString("APP_NAME"),
			Port:           v.GetString("PORT"),
			Debug:          v.GetBool("DEBUG"),
			LogPath:        v.GetString("LOG_PATH"),
			MetricsEnabled: v.GetBool("METRICS_ENABLED"),
			CORSOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Ledger: LedgerConfig{
			Backend: strings.ToLower(v.GetString("LEDGER_BACKEND")),
		},
		Fare: FareConfig{
			Policy:          strings.ToLower(v.GetString("FARE_POLICY")),
			BaseFarePerSeat: baseFare,
			ChildAge:        v.GetInt("FARE_CHILD_AGE"),
			ChildRate:       childRate,
			SeniorAge:       v.GetInt("FARE_SENIOR_AGE"),
			SeniorRate:      seniorRate,
		},
		Booking: BookingConfig{
			WaitlistEnabled: v.GetBool("BOOKING_WAITLIST_ENABLED"),
			SeatLabelPrefix: v.GetString("SEAT_LABEL_PREFIX"),
		},
		Session: SessionConfig{
			ExpiryHours: v.GetInt("SESSION_EXPIRY_HOURS"),
		},
	}

	return config, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
