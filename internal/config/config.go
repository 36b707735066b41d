package config

import (
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	config *Config
	once   sync.Once
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	LogFile        string `mapstructure:"LOG_FILE"`

	PostgresDSN       string        `mapstructure:"POSTGRES_DSN"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBLogMode         bool          `mapstructure:"DB_LOG_MODE"`
}

func GetConfig() *Config {
	once.Do(func() {
		viper.SetDefault("PORT", "4000")
		viper.SetDefault("ENVIRONMENT", "development")
		viper.SetDefault("TOKEN_TTL", "72h")
		viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
		viper.SetDefault("LOG_FILE", "logs/api.log")
		viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
		viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
		viper.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
		viper.SetDefault("DB_LOG_MODE", true)

		viper.SetConfigName(".env")
		viper.SetConfigType("env")
		viper.AddConfigPath(".")
		viper.AutomaticEnv()

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				log.Fatalf("Fatal error config file: %s \n", err)
			} else {
				log.Println("[WARNING]: .env config file not found, relying on defaults and system ENV variables.")
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			log.Fatalf("Error unmarshalling config, %s", err)
		}

		config.TokenTTL = parseDuration("TOKEN_TTL", 72*time.Hour)
		config.DBConnMaxLifetime = parseDuration("DB_CONN_MAX_LIFETIME", time.Hour)
	})

	return config
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf(
			"Warning: Invalid %s format '%s', using default %s. Error: %v\n",
			key,
			raw,
			fallback,
			err,
		)
		return fallback
	}
	return parsed
}
