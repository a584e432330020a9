package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type config struct {
	Network        string
	SelfID         string
	SelfAddr       string
	MembershipFile string
	AdminKey       string
	Host           string
	Port           string
	MaxConns       int
	LogLevel       string
	FeedInterval   time.Duration
}

func loadConfig() config {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "8080")
	return config{
		Network:        getEnv("NETWORK_NAME", "default"),
		SelfID:         getEnv("SELF_ID", ""),
		SelfAddr:       getEnv("SELF_ADDR", "127.0.0.1:"+port),
		MembershipFile: getEnv("MEMBERSHIP_FILE", ""),
		AdminKey:       getEnv("ADMIN_API_KEY", ""),
		Host:           getEnv("SERVER_HOST", "0.0.0.0"),
		Port:           port,
		MaxConns:       getEnvInt("MAX_CONNS", 256),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FeedInterval:   time.Duration(getEnvInt("FEED_INTERVAL_MS", 1000)) * time.Millisecond,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
