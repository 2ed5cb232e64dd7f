package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("CERTIFICATE_GENERATION_LIMIT", "")

	cfg := FromEnv()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, 2, cfg.CertificateGenerationLimit)
	assert.Equal(t, "@every 10m", cfg.SessionSweepSpec)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_DRIVER", " Redis ")
	t.Setenv("CERTIFICATE_GENERATION_LIMIT", "5")
	t.Setenv("REDIS_DB", "3")

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis", cfg.StorageDriver)
	assert.Equal(t, 5, cfg.CertificateGenerationLimit)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestGetEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("SALT_ROUND", "twelve")
	assert.Equal(t, 10, getEnvInt("SALT_ROUND", 10))
}
