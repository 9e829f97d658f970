package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Budget      BudgetConfig
	Correlation CorrelationConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	URL            string
	MigrationsPath string
}

type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

type BudgetConfig struct {
	DefaultQueryBudget int
}

type CorrelationConfig struct {
	RulesPath string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("SENTINEL")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.migrationspath", "file://migrations")
	viper.SetDefault("redis.cachettl", "30s")
	viper.SetDefault("budget.defaultquerybudget", 100)
	viper.SetDefault("correlation.rulespath", "config/correlation.yaml")
	viper.SetDefault("ratelimit.requestspersecond", 20)
	viper.SetDefault("ratelimit.burst", 40)

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.Redis.URL = url
	}

	return &cfg, nil
}
