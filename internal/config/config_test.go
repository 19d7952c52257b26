package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, "users", cfg.DynamoTables.Users)
	assert.Equal(t, "addresses", cfg.DynamoTables.Addresses)
	assert.Equal(t, "messages", cfg.DynamoTables.Messages)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "vanishmail.io", cfg.MailDomain)
	assert.Equal(t, 24*time.Hour, cfg.AddressTTL)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 5*time.Minute, cfg.OTPSweepInterval)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_EXPIRY_DAYS", "1")
	t.Setenv("OTP_TTL_MINUTES", "3")
	t.Setenv("MAIL_DOMAIN", "tmp.example.org")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 3*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "tmp.example.org", cfg.MailDomain)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestGetEnvInt_Invalid_FallsBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY_DAYS", "not-a-number")
	cfg := Load()
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
}
