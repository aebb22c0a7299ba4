package config_test

import (
	"testing"
	"time"

	"dayflow-hrms/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := config.Load(t.TempDir())

	assert.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "09:00", cfg.Attendance.LateCutoff)
	assert.Equal(t, "18:00", cfg.Attendance.EarlyDepartureCutoff)
	assert.Equal(t, 8.0, cfg.Attendance.StandardHours)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "hr.notification.created.v1", cfg.Kafka.NotificationTopic)
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := config.Load(t.TempDir())

	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	d, err := config.ParseClock("09:00")
	assert.NoError(t, err)
	assert.Equal(t, 9*time.Hour, d)

	d, err = config.ParseClock("17:59:30")
	assert.NoError(t, err)
	assert.Equal(t, 17*time.Hour+59*time.Minute+30*time.Second, d)

	_, err = config.ParseClock("9am")
	assert.Error(t, err)
}
