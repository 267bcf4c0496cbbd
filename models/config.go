package models

import "time"

// Config is the full application configuration, decoded from config.yaml and the environment.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Stats     StatsConfig     `mapstructure:"stats"`
}

type BotConfig struct {
	Token            string `mapstructure:"token"`
	AdminChannelID   string `mapstructure:"admin_channel_id"`
	Proxy            string `mapstructure:"proxy"`             // SOCKS5 host:port, optional
	RegisterCommands bool   `mapstructure:"register_commands"` // register slash commands on start

	// Developers and AdminRoles may run privileged slash commands such as /archive_date.
	Developers []string `mapstructure:"developers"`
	AdminRoles []string `mapstructure:"admin_roles"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	APIKey      string   `mapstructure:"api_key"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type GRPCConfig struct {
	Addr           string        `mapstructure:"addr"`
	HealthInterval time.Duration `mapstructure:"health_interval"`
}

type SchedulerConfig struct {
	TotalsCron      string        `mapstructure:"totals_cron"`
	TaskCleanupCron string        `mapstructure:"task_cleanup_cron"`
	TaskRetention   time.Duration `mapstructure:"task_retention"`
	TotalsAtStartup bool          `mapstructure:"totals_at_startup"`
}

type StatsConfig struct {
	RecentLimit    int     `mapstructure:"recent_limit"`
	WordPositions  int     `mapstructure:"word_positions"`
	SpaceThreshold float64 `mapstructure:"space_threshold"` // percent
}
