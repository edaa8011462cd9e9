package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken       string
	AdminID        int64
	AdminUsername  string
	TesterUsername string

	DBFile       string
	AuditLogFile string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	Currency             string
	ReferralBonusNew     int64
	ReferralBonusInviter int64
	MinDeposit           int64
	MaxDeposit           int64
	RefPercent           int64
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		BotToken:       getEnv("BOT_TOKEN", ""),
		AdminID:        getEnvInt("ADMIN_ID", 0),
		AdminUsername:  strings.TrimPrefix(getEnv("ADMIN_USERNAME", ""), "@"),
		TesterUsername: strings.TrimPrefix(getEnv("TESTER_USERNAME", ""), "@"),

		DBFile:       getEnv("DB_FILE", "shop.db"),
		AuditLogFile: getEnv("LOG_FILE", "admin_logs.txt"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		Currency:             getEnv("CURRENCY", "₪"),
		ReferralBonusNew:     getEnvInt("REFERRAL_BONUS_NEW", 2),
		ReferralBonusInviter: getEnvInt("REFERRAL_BONUS_INVITER", 3),
		MinDeposit:           getEnvInt("MIN_DEPOSIT", 100),
		MaxDeposit:           getEnvInt("MAX_DEPOSIT", 10000),
		RefPercent:           getEnvInt("REF_PERCENT", 10),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}
