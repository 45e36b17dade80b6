package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // social-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Redis struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Auth struct {
	JWTSecret string `yaml:"jwtSecret"`
}

type AI struct {
	APIKey      string `yaml:"apiKey"`
	BaseURL     string `yaml:"baseUrl"`
	Model       string `yaml:"model"`
	BotUsername string `yaml:"botUsername"`
}

type Chat struct {
	MaxMessageLen int `yaml:"maxMessageLen"`
}

type Workers struct {
	QueueSize int `yaml:"queueSize"`
	Count     int `yaml:"count"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Auth     Auth     `yaml:"auth"`
	AI       AI       `yaml:"ai"`
	Chat     Chat     `yaml:"chat"`
	Workers  Workers  `yaml:"workers"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	// defaults
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "social-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o-mini"
	}
	if c.AI.BotUsername == "" {
		c.AI.BotUsername = "bot"
	}
	if c.Chat.MaxMessageLen <= 0 {
		c.Chat.MaxMessageLen = 1000
	}
	if c.Workers.QueueSize <= 0 {
		c.Workers.QueueSize = 256
	}
	if c.Workers.Count <= 0 {
		c.Workers.Count = 4
	}
	return nil
}
