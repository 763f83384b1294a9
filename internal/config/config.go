package config

import (
	"github.com/leavedesk/service-booking/pkg/config"
)

// LineConfig holds LINE Messaging API settings.
type LineConfig struct {
	ChannelAccessToken string
	APIBaseURL         string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	Timezone    string
	CORSOrigins []string
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	KafkaConfig config.KafkaConfig
	RedisConfig config.RedisConfig
	LineConfig  LineConfig
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("LEAVE")
	if err != nil {
		return nil, err
	}
	v.SetDefault("SERVICE_PORT", ":8004")
	v.SetDefault("DB_NAME", "leave_booking")
	v.SetDefault("TIMEZONE", "Asia/Bangkok")

	return &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		Timezone:    v.GetString("TIMEZONE"),
		CORSOrigins: config.SplitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		RedisConfig: config.LoadRedisConfig(v),
		LineConfig: LineConfig{
			ChannelAccessToken: v.GetString("LINE_CHANNEL_ACCESS_TOKEN"),
			APIBaseURL:         v.GetString("LINE_API_BASE_URL"),
		},
	}, nil
}
