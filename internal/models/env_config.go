package models

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type EnvConfig struct {
	DatabaseURL string
	Port        string
	Debug       bool
	OutboxSize  int
}

func ReadEnvConfig() EnvConfig {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	debug := os.Getenv("CONTESA_DEBUG") == "true"
	port := os.Getenv("CONTESA_PORT")
	if port == "" {
		port = "23495"
	}
	outboxSize, err := strconv.Atoi(os.Getenv("CONTESA_OUTBOX_SIZE"))
	if err != nil || outboxSize <= 0 {
		fmt.Println("Using default value for CONTESA_OUTBOX_SIZE")
		outboxSize = 256
	}
	return EnvConfig{
		DatabaseURL: os.Getenv("CONTESA_DATABASE_URL"),
		Port:        port,
		Debug:       debug,
		OutboxSize:  outboxSize,
	}
}
