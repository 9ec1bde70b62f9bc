package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Session    Session `yaml:"session"`
}

// Session configures the client-side session manager; the relay ignores it.
type Session struct {
	RelayURL       string        `yaml:"relay-url" env:"RELAY_URL" env-default:"ws://localhost:8080/ws"`
	MaxAttempts    int           `yaml:"max-reconnect-attempts" env-default:"3"`
	ReconnectDelay time.Duration `yaml:"reconnect-delay" env-default:"2s"`
	UpdateInterval time.Duration `yaml:"update-interval" env-default:"100ms"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}
