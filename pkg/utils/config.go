package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// ServerConfig configures the proxy service.
type ServerConfig struct {
	Addr            string        `env:"CHARHUB_ADDR" envDefault:":3000"`
	UpstreamURL     string        `env:"CHARHUB_UPSTREAM_URL" envDefault:"https://rickandmortyapi.com"`
	UpstreamTimeout time.Duration `env:"CHARHUB_UPSTREAM_TIMEOUT" envDefault:"10s"`
	AllowedOrigin   string        `env:"CHARHUB_ALLOWED_ORIGIN" envDefault:"*"`
	LogLevel        string        `env:"CHARHUB_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"CHARHUB_LOG_FORMAT" envDefault:"text"`
}

// MirrorConfig configures the offline stand-in for the public API.
type MirrorConfig struct {
	Addr     string `env:"CHARHUB_MIRROR_ADDR" envDefault:":9000"`
	DataFile string `env:"CHARHUB_MIRROR_FILE" envDefault:"data/characters.json"`
	LogLevel string `env:"CHARHUB_LOG_LEVEL" envDefault:"info"`
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set win over the file.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func LoadMirrorConfig() (MirrorConfig, error) {
	var cfg MirrorConfig
	if err := env.Parse(&cfg); err != nil {
		return MirrorConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the process logger from a level name and a format
// ("text" or "json"). Unknown levels fall back to info.
func NewLogger(level, format string) *logrus.Logger {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
