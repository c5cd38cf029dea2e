package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	MediaDriverLocal = "local"
	MediaDriverS3    = "s3"
)

type (
	Config struct {
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		GRPCPort string `mapstructure:"GRPC_PORT"`
		Debug    bool   `mapstructure:"DEBUG"`

		DBDriver   string `mapstructure:"DB_DRIVER"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
		SQLitePath string `mapstructure:"SQLITE_PATH"`

		JWTSecret  string        `mapstructure:"JWT_SECRET"`
		JWTTTL     time.Duration `mapstructure:"JWT_TTL"`
		BcryptCost int           `mapstructure:"BCRYPT_COST"`

		MediaDriver    string `mapstructure:"MEDIA_DRIVER"`
		MediaLocalPath string `mapstructure:"MEDIA_LOCAL_PATH"`
		MediaMaxBytes  int64  `mapstructure:"MEDIA_MAX_BYTES"`
		S3Bucket       string `mapstructure:"S3_BUCKET"`
		S3Region       string `mapstructure:"S3_REGION"`
		S3AccessID     string `mapstructure:"S3_ACCESS_ID"`
		S3AccessKey    string `mapstructure:"S3_ACCESS_KEY"`
		S3KeyPrefix    string `mapstructure:"S3_KEY_PREFIX"`
	}
)

var envs = []string{
	"HOST", "PORT", "GRPC_PORT", "DEBUG",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "SQLITE_PATH",
	"JWT_SECRET", "JWT_TTL", "BCRYPT_COST",
	"MEDIA_DRIVER", "MEDIA_LOCAL_PATH", "MEDIA_MAX_BYTES",
	"S3_BUCKET", "S3_REGION", "S3_ACCESS_ID", "S3_ACCESS_KEY", "S3_KEY_PREFIX",
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("THINKSPACE")

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "1323")
	v.SetDefault("GRPC_PORT", "9000")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DB_DRIVER", DBDriverPostgres)
	v.SetDefault("DB_HOST", "0.0.0.0")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "db")
	v.SetDefault("DB_SSL_MODE", sslModeDisable)
	v.SetDefault("SQLITE_PATH", "thinkspace.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("MEDIA_DRIVER", MediaDriverLocal)
	v.SetDefault("MEDIA_LOCAL_PATH", "media")
	v.SetDefault("MEDIA_MAX_BYTES", 2<<20)
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ACCESS_ID", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_KEY_PREFIX", "media/")

	for _, key := range envs {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if !oneOf(cfg.DBSSLMode, sslModeDisable, sslModeRequire) {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if !oneOf(cfg.DBDriver, DBDriverPostgres, DBDriverSQLite) {
		return errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver))
	}
	if !oneOf(cfg.MediaDriver, MediaDriverLocal, MediaDriverS3) {
		return errors.New(fmt.Sprintf("media driver is invalid: %s", cfg.MediaDriver))
	}
	if cfg.MediaDriver == MediaDriverS3 && cfg.S3Bucket == "" {
		return errors.New("S3 bucket must be set for the s3 media driver")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT secret must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return errors.New(fmt.Sprintf("JWT TTL is invalid: %s", cfg.JWTTTL))
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return errors.New(fmt.Sprintf("bcrypt cost is out of range: %d", cfg.BcryptCost))
	}
	return nil
}

func oneOf(value string, valid ...string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
