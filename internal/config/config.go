package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chatzone/internal/logger"
)

// loadEnv reads .env outside production only (in a container config comes
// from the environment). Walks up a few directories so the binary can run
// from services/api during development.
func loadEnv() {
	if os.Getenv("APP_ENV") == "production" {
		return
	}
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		path := dir + "/.env"
		f, err := os.Open(path)
		if err == nil {
			loadEnvFrom(f)
			f.Close()
			return
		}
		parent := strings.TrimSuffix(dir, "/")
		idx := strings.LastIndex(parent, "/")
		if idx <= 0 {
			return
		}
		dir = parent[:idx]
		if dir == "" {
			dir = "/"
		}
	}
}

func loadEnvFrom(f *os.File) {
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if key == "" {
			continue
		}
		if len(val) >= 2 && (val[0] == '"' && val[len(val)-1] == '"' || val[0] == '\'' && val[len(val)-1] == '\'') {
			val = val[1 : len(val)-1]
		}
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

// AIConfig holds the Gemini collaborator settings. An empty APIKey disables
// AI replies; the collaborator then answers with its fixed fallback text.
type AIConfig struct {
	APIKey string
	Model  string `yaml:"ai_model"`
}

// Config holds the application settings.
// Priority: environment variables > YAML file > defaults.
type Config struct {
	ServerAddr   string        `yaml:"server_addr"`
	ReadTimeout  time.Duration `yaml:"-"`
	WriteTimeout time.Duration `yaml:"-"`
	IdleTimeout  time.Duration `yaml:"-"`

	CORSAllowedOrigins string `yaml:"cors_allowed_origins"`
	LogLevel           string `yaml:"log_level"`

	// WebSocket
	MaxWSConnections int `yaml:"max_ws_connections"`
	WSSendBufferSize int `yaml:"ws_send_buffer_size"`
	WSWriteTimeout   int `yaml:"ws_write_timeout"`
	WSPongTimeout    int `yaml:"ws_pong_timeout"`
	WSMaxMessageSize int `yaml:"ws_max_message_size"`

	// Demo: delay before the simulated incoming call rings. 0 disables it.
	IncomingCallDelay time.Duration `yaml:"-"`

	AI AIConfig `yaml:"-"`
}

type yamlConfig struct {
	ServerAddr            string `yaml:"server_addr"`
	ReadTimeout           int    `yaml:"read_timeout"`
	WriteTimeout          int    `yaml:"write_timeout"`
	IdleTimeout           int    `yaml:"idle_timeout"`
	CORSAllowedOrigins    string `yaml:"cors_allowed_origins"`
	LogLevel              string `yaml:"log_level"`
	MaxWSConnections      int    `yaml:"max_ws_connections"`
	WSSendBufferSize      int    `yaml:"ws_send_buffer_size"`
	WSWriteTimeout        int    `yaml:"ws_write_timeout"`
	WSPongTimeout         int    `yaml:"ws_pong_timeout"`
	WSMaxMessageSize      int    `yaml:"ws_max_message_size"`
	AIModel               string `yaml:"ai_model"`
	IncomingCallDelaySecs int    `yaml:"incoming_call_delay"`
}

// Load loads the configuration. Variables from .env are applied first (if
// present), then the YAML file, then the environment (highest priority).
func Load() *Config {
	loadEnv()
	yc := yamlConfig{
		ServerAddr:            ":8080",
		ReadTimeout:           15,
		WriteTimeout:          15,
		IdleTimeout:           60,
		CORSAllowedOrigins:    "*",
		LogLevel:              "info",
		MaxWSConnections:      10000,
		WSSendBufferSize:      256,
		WSWriteTimeout:        10,
		WSPongTimeout:         60,
		WSMaxMessageSize:      4096,
		AIModel:               "gemini-2.5-flash",
		IncomingCallDelaySecs: 5,
	}

	paths := []string{os.Getenv("CONFIG_PATH"), "config/api.yaml"}
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &yc); err != nil {
			logger.Errorf("config: parse %s: %v (using defaults)", path, err)
		} else {
			logger.Infof("config: loaded %s", path)
		}
		break
	}

	// API_KEY is accepted as a legacy fallback name for the same credential.
	apiKey := envStr("GEMINI_API_KEY", "")
	if apiKey == "" {
		apiKey = envStr("API_KEY", "")
	}

	return &Config{
		ServerAddr:         envStr("SERVER_ADDR", yc.ServerAddr),
		ReadTimeout:        time.Duration(envInt("READ_TIMEOUT", yc.ReadTimeout)) * time.Second,
		WriteTimeout:       time.Duration(envInt("WRITE_TIMEOUT", yc.WriteTimeout)) * time.Second,
		IdleTimeout:        time.Duration(envInt("IDLE_TIMEOUT", yc.IdleTimeout)) * time.Second,
		CORSAllowedOrigins: envStr("CORS_ALLOWED_ORIGINS", yc.CORSAllowedOrigins),
		LogLevel:           envStr("LOG_LEVEL", yc.LogLevel),
		MaxWSConnections:   envInt("MAX_WS_CONNECTIONS", yc.MaxWSConnections),
		WSSendBufferSize:   envInt("WS_SEND_BUFFER_SIZE", yc.WSSendBufferSize),
		WSWriteTimeout:     envInt("WS_WRITE_TIMEOUT", yc.WSWriteTimeout),
		WSPongTimeout:      envInt("WS_PONG_TIMEOUT", yc.WSPongTimeout),
		WSMaxMessageSize:   envInt("WS_MAX_MESSAGE_SIZE", yc.WSMaxMessageSize),
		IncomingCallDelay:  time.Duration(envInt("INCOMING_CALL_DELAY", yc.IncomingCallDelaySecs)) * time.Second,
		AI: AIConfig{
			APIKey: apiKey,
			Model:  envStr("GEMINI_MODEL", yc.AIModel),
		},
	}
}

// envStr returns the environment value or fallback.
func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt returns the numeric environment value or fallback.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
