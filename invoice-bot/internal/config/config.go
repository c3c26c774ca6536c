package config

import (
	"flag"
	"os"
	"time"
	_ "time/tzdata"

	grpcapp "notaFacilBot/invoice-bot/internal/app/grpc"
	httpapp "notaFacilBot/invoice-bot/internal/app/http"
	jwtToken "notaFacilBot/invoice-bot/internal/pkg/jwt"
	"notaFacilBot/invoice-bot/internal/repository"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"
	sessionservice "notaFacilBot/invoice-bot/internal/service/session"
	"notaFacilBot/invoice-bot/internal/telegram"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env       string                  `yaml:"env" env:"ENV" env-default:"local"`
	Timezone  string                  `yaml:"timezone" env:"TIMEZONE" env-default:"America/Sao_Paulo"`
	HTTP      httpapp.Config          `yaml:"http_server"`
	GRPC      grpcapp.Config          `yaml:"grpc"`
	JWT       jwtToken.Config         `yaml:"jwt"`
	Session   sessionservice.Config   `yaml:"session"`
	Collector collectorservice.Config `yaml:"collector"`
	History   repository.Config       `yaml:"history"`
	Telegram  telegram.Config         `yaml:"telegram"`
}

// Location - часовой пояс, в котором считается "сегодня" для фильтра периода.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func MustLoad() *Config {
	// .env не обязателен
	_ = godotenv.Load()

	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &os.PathError{Op: "config", Path: configPath, Err: os.ErrNotExist}
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "invoice-bot/config/config.yaml"
	}

	return res
}
