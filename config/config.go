package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"discord-archive/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from several sources, later ones overriding earlier ones:
//  1. built-in defaults
//  2. config.yaml in dir
//  3. environment variables (a .env file in dir is loaded first); keys map as bot.token -> BOT_TOKEN
//
// A missing .env or config.yaml is not an error. A config.yaml that exists but fails to parse is.
func Load(dir string) (*models.Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		log.Printf("No .env file found in %s, skipping.", dir)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Printf("No config.yaml found in %s, using defaults and environment variables.", dir)
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.admin_channel_id", "")
	v.SetDefault("bot.proxy", "")
	v.SetDefault("bot.register_commands", true)
	v.SetDefault("bot.developers", []string{})
	v.SetDefault("bot.admin_roles", []string{})

	v.SetDefault("database.path", "data/archive.db")

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("grpc.addr", "")
	v.SetDefault("grpc.health_interval", 30*time.Second)

	v.SetDefault("scheduler.totals_cron", "@daily")
	v.SetDefault("scheduler.task_cleanup_cron", "@hourly")
	v.SetDefault("scheduler.task_retention", 72*time.Hour)
	v.SetDefault("scheduler.totals_at_startup", false)

	v.SetDefault("stats.recent_limit", 75)
	v.SetDefault("stats.word_positions", 50)
	v.SetDefault("stats.space_threshold", 19.8)
}
