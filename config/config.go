package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
	PublicDir      string `mapstructure:"public_dir"`
}

type GameConfig struct {
	CountdownSeconds int           `mapstructure:"countdown_seconds"`
	ReapInterval     time.Duration `mapstructure:"reap_interval"`
	RoomTimeout      time.Duration `mapstructure:"room_timeout"`
	HistoryLimit     int           `mapstructure:"history_limit"`
	StatsLogInterval time.Duration `mapstructure:"stats_log_interval"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" or "pq"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func setDefaults() {
	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.monitor_address", ":9100")
	viper.SetDefault("server.public_dir", "public")

	viper.SetDefault("game.countdown_seconds", 3)
	viper.SetDefault("game.reap_interval", 5*time.Minute)
	viper.SetDefault("game.room_timeout", 30*time.Minute)
	viper.SetDefault("game.history_limit", 10)
	viper.SetDefault("game.stats_log_interval", 10*time.Minute)

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "gorm")
	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.user", "reveal")
	viper.SetDefault("database.postgres.dbname", "reveal")
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("reveal")
	viper.AutomaticEnv()

	setDefaults()

	err = viper.ReadInConfig()
	if err != nil {
		// Defaults cover every knob, so a missing file is fine.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
