package rook

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/rookgg/rook/rook/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig         `toml:"log"`
	Server ServerConfig      `toml:"server"`
	DB     database.DBConfig `toml:"db"`
	GitHub GitHubConfig      `toml:"github"`
	Coach  CoachConfig       `toml:"coach"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type GitHubConfig struct {
	WebhookSecret string `toml:"webhook_secret"`
}

type CoachConfig struct {
	OpenAIKey string `toml:"openai_key"`
	Model     string `toml:"model"`
}
