package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
	Key      string
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Engine struct {
	SwipeThreshold float64
	CommitDelay    time.Duration
	PoolCacheTTL   time.Duration
	SessionIdleTTL time.Duration
	// Idle sessions are swept on every CleanupPeriod-th session creation
	CleanupPeriod int
}

type Breaker struct {
	MaxRequests uint32
	Timeout     time.Duration
	Failures    uint32
}

type Log struct {
	Level string
}

type Config struct {
	HTTP     HTTPServer
	Redis    RedisCache
	Postgres Postgres
	Engine   Engine
	Breaker  Breaker
	Log      Log
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTP:     *newHTTP(),
		Redis:    *newRedis(),
		Postgres: *newPostgres(),
		Engine:   *newEngine(),
		Breaker:  *newBreaker(),
		Log:      *newLog(),
	}

	log.Printf("%s backend config : %+v\n", logtag, cfg)
	return cfg
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "0.0.0.0"),
	}
}

func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", "redis"),
		Password: getenv("REDIS_PASSWORD", "shared"),
		Key:      getenv("REDIS_KEY", "watchlist"),
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getenv("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "watchlist"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func newEngine() *Engine {
	return &Engine{
		SwipeThreshold: getenvFloat("SWIPE_THRESHOLD", 120),
		CommitDelay:    getenvDuration("COMMIT_DELAY", 300*time.Millisecond),
		PoolCacheTTL:   getenvDuration("POOL_CACHE_TTL", time.Minute),
		SessionIdleTTL: getenvDuration("SESSION_IDLE_TTL", 2*time.Hour),
		CleanupPeriod:  getenvInt("SESSION_CLEANUP_PERIOD", 20),
	}
}

func newBreaker() *Breaker {
	return &Breaker{
		MaxRequests: uint32(getenvInt("BREAKER_MAX_REQUESTS", 1)),
		Timeout:     getenvDuration("BREAKER_TIMEOUT", 30*time.Second),
		Failures:    uint32(getenvInt("BREAKER_FAILURES", 5)),
	}
}

func newLog() *Log {
	return &Log{
		Level: getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getenv(key, defaultValue.String())
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("%s %s: bad duration %q, using %s", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getenvInt(key string, defaultValue int) int {
	raw := getenv(key, strconv.Itoa(defaultValue))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Printf("%s %s: bad integer %q, using %d", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getenvFloat(key string, defaultValue float64) float64 {
	raw := getenv(key, strconv.FormatFloat(defaultValue, 'f', -1, 64))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		log.Printf("%s %s: bad number %q, using %v", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return f
}
