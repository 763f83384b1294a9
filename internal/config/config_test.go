package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8004", cfg.Port)
	assert.Equal(t, "Asia/Bangkok", cfg.Timezone)
	assert.Equal(t, "leave_booking", cfg.DBConfig.DBName)
	assert.Empty(t, cfg.LineConfig.ChannelAccessToken)
	assert.Empty(t, cfg.RedisConfig.Addr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LEAVE_SERVICE_PORT", "9100")
	t.Setenv("LEAVE_REDIS_ADDR", "redis:6379")
	t.Setenv("LEAVE_LINE_CHANNEL_ACCESS_TOKEN", "line-token")
	t.Setenv("LEAVE_CORS_ALLOWED_ORIGINS", "https://liff.line.me,https://leave.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Port)
	assert.Equal(t, "redis:6379", cfg.RedisConfig.Addr)
	assert.Equal(t, "line-token", cfg.LineConfig.ChannelAccessToken)
	assert.Equal(t, []string{"https://liff.line.me", "https://leave.example.com"}, cfg.CORSOrigins)
}
