package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Config holds the server settings. Only PORT is part of the public contract
// of the chat service; the rest tune the gateway and have safe defaults.
type Config struct {
	Host               string        `env:"HOST"`
	Port               int           `env:"PORT,default=3000" validate:"min=1,max=65535"`
	AllowedOrigins     string        `env:"ALLOWED_ORIGINS,default=*"`
	MaxMessageSize     int           `env:"MAX_MESSAGE_SIZE,default=4096" validate:"min=64"`
	SendBufferSize     int           `env:"SEND_BUFFER_SIZE,default=256" validate:"min=1"`
	ProfanityWordsFile string        `env:"PROFANITY_WORDS_FILE"`
	LogFormat          string        `env:"LOG_FORMAT,default=text" validate:"oneof=text json"`
	LogLevel           string        `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn warning error"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
}

var configValidator = validator.New()

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig() (Config, error) {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromEnv builds a Config from an explicit set of variables.
func ConfigFromEnv(es env.EnvSet) (Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Origins splits AllowedOrigins on commas, dropping blanks.
func (c Config) Origins() []string {
	return parseOrigins(c.AllowedOrigins)
}

func parseOrigins(origins string) []string {
	parts := lo.Map(strings.Split(origins, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(parts)
}
