package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
	Issuer string
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds Redis settings. An empty Addr disables Redis-backed features.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load returns a viper instance reading PREFIX_* environment variables and an optional .env file.
func Load(prefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_ISSUER", "leavedesk")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "leavedesk-")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
}

// GetServicePort returns the listen address for key, defaulting to :8080.
func GetServicePort(v *viper.Viper, key string) string {
	port := v.GetString(key)
	if port == "" {
		return ":8080"
	}
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		port = ":" + port
	}
	return port
}

// GetAppEnv returns the deployment environment name.
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("APP_ENV")
}

// LoadDatabaseConfig reads DB_* keys; dbNameKey selects the database name key.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

// LoadJWTConfig reads JWT_* keys.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}
}

// LoadKafkaConfig reads KAFKA_* keys. Brokers are comma separated.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	return KafkaConfig{
		Brokers:     SplitList(v.GetString("KAFKA_BROKERS")),
		GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
	}
}

// LoadRedisConfig reads REDIS_* keys.
func LoadRedisConfig(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Addr:     v.GetString("REDIS_ADDR"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
