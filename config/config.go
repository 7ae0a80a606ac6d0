package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisTaskDB   int    `mapstructure:"REDIS_TASK_DB"`

	// Availability engine configuration.
	CacheTTLMinutes      int `mapstructure:"AVAILABILITY_CACHE_TTL_MIN"`
	MaxRangeDays         int `mapstructure:"AVAILABILITY_MAX_RANGE_DAYS"`
	ReasonableStartHour  int `mapstructure:"AVAILABILITY_REASONABLE_START_HOUR"`
	ReasonableEndHour    int `mapstructure:"AVAILABILITY_REASONABLE_END_HOUR"`
	MaxOccurrencesPerSet int `mapstructure:"AVAILABILITY_MAX_OCCURRENCES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_TASK_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("AVAILABILITY_CACHE_TTL_MIN", 60)
	viper.SetDefault("AVAILABILITY_MAX_RANGE_DAYS", 90)
	viper.SetDefault("AVAILABILITY_REASONABLE_START_HOUR", 7)
	viper.SetDefault("AVAILABILITY_REASONABLE_END_HOUR", 21)
	viper.SetDefault("AVAILABILITY_MAX_OCCURRENCES", 5000)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
