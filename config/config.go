package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	DB    DBConfig
	Redis RedisConfig
	HTTP  HTTPConfig
	Auth  AuthConfig
	SMTP  SMTPConfig
}

type DBConfig struct {
	User     string
	Password string
	DBName   string
	SSLMode  string
	Host     string
	Port     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HTTPConfig struct {
	Addr string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  string // time.Duration string, e.g. "24h"
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

var Cfg *Config

func InitConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("auth.tokenttl", "24h")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	err = viper.Unmarshal(&Cfg)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
