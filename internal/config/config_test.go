package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("THINKSPACE_JWT_SECRET", "secret")

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "1323", cfg.Port)
		assert.Equal(t, DBDriverPostgres, cfg.DBDriver)
		assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
		assert.Equal(t, MediaDriverLocal, cfg.MediaDriver)
		assert.Equal(t, 12, cfg.BcryptCost)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("THINKSPACE_JWT_SECRET", "secret")
		t.Setenv("THINKSPACE_DB_DRIVER", "sqlite")
		t.Setenv("THINKSPACE_JWT_TTL", "15m")
		t.Setenv("THINKSPACE_DEBUG", "true")

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, DBDriverSQLite, cfg.DBDriver)
		assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
		assert.True(t, cfg.Debug)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("THINKSPACE_JWT_SECRET", "")

		_, err := NewConfig()
		assert.Error(t, err)
	})

	t.Run("invalid ssl mode", func(t *testing.T) {
		t.Setenv("THINKSPACE_JWT_SECRET", "secret")
		t.Setenv("THINKSPACE_DB_SSL_MODE", "maybe")

		_, err := NewConfig()
		assert.EqualError(t, err, "config validation failed: DB SSL mode is invalid: maybe")
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		t.Setenv("THINKSPACE_JWT_SECRET", "secret")
		t.Setenv("THINKSPACE_MEDIA_DRIVER", "s3")

		_, err := NewConfig()
		assert.Error(t, err)
	})
}
