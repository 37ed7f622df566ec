package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ICEServers     []string      `mapstructure:"ice_servers"`

	DBHost     string `mapstructure:"db_host"`
	DBPort     string `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	DBSSLMode  string `mapstructure:"db_sslmode"`

	MatchCost       int64         `mapstructure:"match_cost"`
	FreeMinBalance  int64         `mapstructure:"free_min_balance"`
	QueueStaleAfter time.Duration `mapstructure:"queue_stale_after"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	GCInterval      time.Duration `mapstructure:"gc_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	// keys without a default are invisible to AutomaticEnv + Unmarshal
	v.SetDefault("jwt_secret", "")
	v.SetDefault("db_password", "")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("ice_servers", []string{"stun:stun.l.google.com:19302"})

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "swipxin")
	v.SetDefault("db_name", "swipxin")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("match_cost", 8)
	v.SetDefault("free_min_balance", 1)
	v.SetDefault("queue_stale_after", "5m")
	v.SetDefault("sweep_interval", "3s")
	v.SetDefault("gc_interval", "1m")

	v.SetEnvPrefix("SWIPXIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.MatchCost < 1 {
		return fmt.Errorf("match_cost must be at least 1")
	}
	if c.FreeMinBalance < 0 {
		return fmt.Errorf("free_min_balance must not be negative")
	}
	if c.QueueStaleAfter <= 0 {
		return fmt.Errorf("queue_stale_after must be positive")
	}
	if c.SweepInterval <= 0 || c.GCInterval <= 0 {
		return fmt.Errorf("sweep_interval and gc_interval must be positive")
	}
	return nil
}

// HasDB reports whether a database is configured; without a password
// the server runs on the in-memory nop store.
func (c *Config) HasDB() bool {
	return c.DBPassword != ""
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
