package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken       string
	DBDSN          string
	Port           string
	LogFile        string
	PharmacyChatID int64         // group chat receiving expiry alerts
	WebhookURL     string        // when set, updates arrive over HTTP instead of long polling
	ScanSpec       string        // 6-field cron expression for the expiry scan
	HorizonDays    int           // expiry horizon in days
	NotifyWorkers  int           // fan-out worker cap
	SendTimeout    time.Duration // per-notification send timeout
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		DBDSN:          getenv("DB_DSN", "pharmabot.db"),
		Port:           getenv("PORT", "8081"),
		LogFile:        getenv("LOG_FILE", "./pharmabot.log"),
		PharmacyChatID: getint64("PHARMACY_CHAT_ID", 0),
		WebhookURL:     os.Getenv("WEBHOOK_URL"),
		ScanSpec:       getenv("EXPIRY_SCAN_SPEC", "0 0 8 * * *"), // daily at 08:00
		HorizonDays:    getint("EXPIRY_HORIZON_DAYS", 180),
		NotifyWorkers:  getint("NOTIFY_WORKERS", 8),
		SendTimeout:    getdur("NOTIFY_SEND_TIMEOUT", 10*time.Second),
	}
	log.Printf("[config] DB_DSN=%s PORT=%s PHARMACY_CHAT_ID=%d EXPIRY_SCAN_SPEC=%q EXPIRY_HORIZON_DAYS=%d NOTIFY_WORKERS=%d",
		cfg.DBDSN, cfg.Port, cfg.PharmacyChatID, cfg.ScanSpec, cfg.HorizonDays, cfg.NotifyWorkers)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[config] invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getint64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		log.Printf("[config] invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[config] invalid %s=%q, using %s", key, v, def)
	}
	return def
}
