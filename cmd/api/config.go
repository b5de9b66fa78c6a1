package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type config struct {
	Addr           string        `env:"ADDR" env-default:":8080"`
	Env            string        `env:"ENV" env-default:"development"`
	APIURL         string        `env:"EXTERNAL_URL" env-default:"localhost:8080"`
	LogLevel       string        `env:"LOG_LEVEL" env-default:"info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"20s"`
	DB             dbConfig
}

type dbConfig struct {
	Addr           string        `env:"DB_ADDR" env-required:"true"`
	MaxConns       int32         `env:"DB_MAX_CONNS" env-default:"30"`
	MaxIdleTime    time.Duration `env:"DB_MAX_IDLE_TIME" env-default:"15m"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" env-default:"30s"`
	AutoSchema     bool          `env:"DB_AUTO_SCHEMA" env-default:"true"`
}

// loadConfig reads an optional .env file and then binds the environment.
// Variables already set in the environment win over the file.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return config{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}
