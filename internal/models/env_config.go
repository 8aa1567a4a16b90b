package models

import (
	"fmt"
	"os"
	"strconv"
)

type EnvConfig struct {
	DatabaseURL    string
	Port           string
	MaxReviewBatch int
	Debug          bool
}

func ReadEnvConfig() EnvConfig {
	debug := os.Getenv("TRUSTENGINE_DEBUG") == "true"
	port := os.Getenv("TRUSTENGINE_PORT")
	if port == "" {
		port = "23496"
	}
	maxReviewBatch, err := strconv.Atoi(os.Getenv("TRUSTENGINE_MAX_REVIEW_BATCH"))
	if err != nil {
		fmt.Println("Using default value for TRUSTENGINE_MAX_REVIEW_BATCH")
		maxReviewBatch = 50
	}
	return EnvConfig{
		DatabaseURL:    os.Getenv("TRUSTENGINE_DATABASE_URL"),
		Port:           port,
		MaxReviewBatch: maxReviewBatch,
		Debug:          debug,
	}
}
