package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WITHDRAW_RETENTION_DAYS", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Complaint.RetentionDays)
	assert.Equal(t, 30*24*time.Hour, cfg.Complaint.Retention())
	assert.Equal(t, 6*time.Hour, cfg.Complaint.SweepInterval())
	assert.Equal(t, 15*time.Second, cfg.Complaint.SweepInitialDelay())
	assert.Equal(t, "anon_vote_id", cfg.Auth.AnonCookieName)
	assert.False(t, cfg.Auth.AnonCookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WITHDRAW_RETENTION_DAYS", "7")
	t.Setenv("RETENTION_SWEEP_INTERVAL_MINUTES", "60")
	t.Setenv("APP_ENV", "production")
	t.Setenv("VOTE_RATE_LIMIT_RPS", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.Complaint.Retention())
	assert.Equal(t, time.Hour, cfg.Complaint.SweepInterval())
	assert.True(t, cfg.Auth.AnonCookieSecure)
	assert.Equal(t, 0.5, cfg.RateLimit.VoteRPS)
}

func TestLoadRejectsNonPositiveRetention(t *testing.T) {
	t.Setenv("WITHDRAW_RETENTION_DAYS", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Complaint.RetentionDays)
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	assert.Error(t, err)
}
