package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Tunables for feed composition and caching.
const (
	DefaultFeedLimit   = 20
	MaxFeedLimit       = 50
	FeedCandidateCap   = 100
	DefaultFeedDays    = 7
	FeedCacheTTL       = 300 * time.Second
	MirrorTTL          = time.Hour
	FeedRegenDelay     = 5 * time.Second
	JobMaxAttempts     = 3
	JobPollInterval    = time.Second
	JobLeaseTTL        = 30 * time.Second
	JobRetryBackoff    = 2 * time.Second
	JobRetryMaxDelay   = 5 * time.Minute
	SubscriptionSweep  = time.Hour
)

// Config carries process-level settings loaded from the environment.
type Config struct {
	Port       string
	MongoURI   string
	DBName     string
	JWTSecret  string
	BadgerPath string // empty = in-memory
	BrokerMode bool   // true = durable job queue with workers, false = inline
	Workers    int
}

// Load overloads .env into the environment (.env wins over inherited
// values) and reads the process settings.
func Load() Config {
	if err := godotenv.Overload(".env"); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := Config{
		Port:       getenv("PORT", "3000"),
		MongoURI:   os.Getenv("MONGO_URI"),
		DBName:     getenv("DB_NAME", "engage_workspace"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		BadgerPath: os.Getenv("BADGER_PATH"),
		BrokerMode: getenv("BROKER_MODE", "") == "broker",
		Workers:    getint("WORKERS", 2),
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
