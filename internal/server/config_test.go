package server

import (
	"testing"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := ConfigFromEnv(env.EnvSet{})
	require.NoError(t, err)

	require.Equal(t, 3000, cfg.Port)
	require.Equal(t, "", cfg.Host)
	require.Equal(t, "*", cfg.AllowedOrigins)
	require.Equal(t, 4096, cfg.MaxMessageSize)
	require.Equal(t, 256, cfg.SendBufferSize)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, ":3000", cfg.Addr())
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	cfg, err := ConfigFromEnv(env.EnvSet{
		"PORT":                 "8080",
		"HOST":                 "127.0.0.1",
		"ALLOWED_ORIGINS":      "http://a.example, ,http://b.example",
		"SEND_BUFFER_SIZE":     "16",
		"PROFANITY_WORDS_FILE": "/etc/roomchat/words.txt",
		"LOG_FORMAT":           "json",
		"LOG_LEVEL":            "debug",
		"SHUTDOWN_TIMEOUT":     "3s",
	})
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:8080", cfg.Addr())
	require.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Origins())
	require.Equal(t, 16, cfg.SendBufferSize)
	require.Equal(t, "/etc/roomchat/words.txt", cfg.ProfanityWordsFile)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  env.EnvSet
	}{
		{name: "port not a number", env: env.EnvSet{"PORT": "abc"}},
		{name: "port out of range", env: env.EnvSet{"PORT": "70000"}},
		{name: "zero send buffer", env: env.EnvSet{"SEND_BUFFER_SIZE": "0"}},
		{name: "tiny message size", env: env.EnvSet{"MAX_MESSAGE_SIZE": "10"}},
		{name: "unknown log format", env: env.EnvSet{"LOG_FORMAT": "xml"}},
		{name: "unknown log level", env: env.EnvSet{"LOG_LEVEL": "verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConfigFromEnv(tt.env)
			require.Error(t, err)
		})
	}
}

func TestParseOrigins(t *testing.T) {
	require.Equal(t, []string{"*"}, parseOrigins("*"))
	require.Empty(t, parseOrigins(" , "))
	require.Equal(t, []string{"http://x.example"}, parseOrigins(" http://x.example "))
}
