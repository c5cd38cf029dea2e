// Package media stores uploaded user images and returns the public URL they are served from.
package media

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/config"
)

var ErrInvalidKey = errors.New("invalid media key")

type Store interface {
	// Put stores body under key and returns the URL clients fetch it from.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

func NewStore(cfg *config.Config, l *zap.SugaredLogger) (Store, error) {
	switch cfg.MediaDriver {
	case config.MediaDriverS3:
		return NewS3(context.Background(), S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessID:  cfg.S3AccessID,
			AccessKey: cfg.S3AccessKey,
			KeyPrefix: cfg.S3KeyPrefix,
		}, l)
	default:
		return NewLocal(cfg.MediaLocalPath, l)
	}
}
