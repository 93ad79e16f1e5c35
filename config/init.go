package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
)

type Config struct {
	AppConfig      *AppConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
	BreadAPIConfig *BreadAPIConfig
	MyshipConfig   *MyshipConfig
	IMAPConfig     *IMAPConfig
	SMTPConfig     *SMTPConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:      &AppConfig{},
		Logger:         &logger.Config{},
		Tracing:        &tracing.JaegerConfig{},
		BreadAPIConfig: &BreadAPIConfig{},
		MyshipConfig:   &MyshipConfig{},
		IMAPConfig:     &IMAPConfig{},
		SMTPConfig:     &SMTPConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading myship worker config: %v", err)
	}

	return config, nil
}
