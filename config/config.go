// Package config reads database settings from the environment and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"linehistory/database"
)

// ErrMissingDatabase is returned when DB_NAME is required but unset.
var ErrMissingDatabase = errors.New("database name is required, set DB_NAME in .env file")

// LoadEnv loads the given .env files (".env" when none). A missing file is
// only a warning.
func LoadEnv(log *zap.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Warn(".env file not found or could not be loaded", zap.Error(err))
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DatabaseFromEnv builds a database.Config from DB_TYPE, DB_HOST, DB_PORT,
// DB_USER, DB_PASSWORD, DB_NAME and DB_SSLMODE.
func DatabaseFromEnv() (database.Config, error) {
	cfg := database.Config{
		Type:     getenv("DB_TYPE", "mysql"),
		Host:     getenv("DB_HOST", "localhost"),
		User:     getenv("DB_USER", "root"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}

	switch cfg.Type {
	case "postgres":
		cfg.Port = 5432
	default:
		cfg.Port = 3306
	}
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid DB_PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if cfg.Database == "" && cfg.Type != "sqlite" {
		return cfg, ErrMissingDatabase
	}
	return cfg, nil
}
