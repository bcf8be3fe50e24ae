package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type DBConfig struct {
	Path     string `yaml:"path" env:"DB_PATH" env-default:"./data/comic-notifier.db"`
	SeedFile string `yaml:"seed_file" env:"DB_SEED_FILE"`
}

type CheckerConfig struct {
	Interval    time.Duration `yaml:"interval" env:"CHECK_INTERVAL" env-default:"30m"`
	Concurrency int           `yaml:"concurrency" env:"CHECK_CONCURRENCY" env-default:"8"`
	Timeout     time.Duration `yaml:"timeout" env:"CHECK_TIMEOUT" env-default:"8s"`
	RunOnStart  bool          `yaml:"run_on_start" env:"CHECK_RUN_ON_START" env-default:"false"`
}

type WebhookConfig struct {
	Timeout    time.Duration `yaml:"timeout" env:"WEBHOOK_TIMEOUT" env-default:"10s"`
	MaxElapsed time.Duration `yaml:"max_elapsed" env:"WEBHOOK_MAX_ELAPSED" env-default:"30s"`
	BotName    string        `yaml:"bot_name" env:"WEBHOOK_BOT_NAME" env-default:"Comic Notifier"`
	SiteURL    string        `yaml:"site_url" env:"WEBHOOK_SITE_URL"`
}

type BrokerConfig struct {
	// empty address disables publishing
	Address string `yaml:"address" env:"BROKER_ADDRESS"`
	Subject string `yaml:"subject" env:"BROKER_SUBJECT" env-default:"comics.chapter.updated"`
}

type StreamConfig struct {
	TCPAddress string `yaml:"tcp_address" env:"STREAM_TCP_ADDRESS"`
	UDPAddress string `yaml:"udp_address" env:"STREAM_UDP_ADDRESS"`
}

// SourceConfig tells the checker how to read the latest chapter for one host.
type SourceConfig struct {
	Host     string   `yaml:"host"`
	Kind     string   `yaml:"kind"` // html or json
	Selector string   `yaml:"selector"`
	Path     string   `yaml:"path"`
	Format   string   `yaml:"format"`
	Strip    []string `yaml:"strip"`
}

type Config struct {
	LogLevel    string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	LogFile     string        `yaml:"log_file" env:"LOG_FILE"`
	HTTPAddress string        `yaml:"http_address" env:"HTTP_ADDRESS" env-default:":8080"`
	JWTSecret   string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	RateLimit   int           `yaml:"rate_limit" env:"RATE_LIMIT" env-default:"50"`

	DB      DBConfig       `yaml:"db"`
	Checker CheckerConfig  `yaml:"checker"`
	Webhook WebhookConfig  `yaml:"webhook"`
	Broker  BrokerConfig   `yaml:"broker"`
	Stream  StreamConfig   `yaml:"stream"`
	Sources []SourceConfig `yaml:"sources"`
}

// Load reads configPath when it exists and falls back to environment
// variables and defaults otherwise.
func Load(configPath string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(configPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config %q: %w", configPath, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
		return cfg, cfg.validate()
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", configPath, err)
	}
	return cfg, cfg.validate()
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}
	return cfg
}

func (c Config) validate() error {
	if c.Checker.Concurrency < 1 {
		return fmt.Errorf("wrong checker concurrency specified: %d", c.Checker.Concurrency)
	}
	if c.Checker.Interval <= 0 {
		return fmt.Errorf("checker interval must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("empty jwt secret")
	}
	for i, s := range c.Sources {
		if s.Host == "" {
			return fmt.Errorf("source %d: empty host", i)
		}
		if s.Kind != "html" && s.Kind != "json" {
			return fmt.Errorf("source %s: unknown kind %q", s.Host, s.Kind)
		}
	}
	return nil
}
