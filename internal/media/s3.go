package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	S3Config struct {
		Bucket    string
		Region    string
		AccessID  string
		AccessKey string
		KeyPrefix string
	}

	S3 struct {
		client      *s3.Client
		bucket      string
		region      string
		baseKeyName string
		logger      *zap.SugaredLogger
	}
)

// NewS3 uses static credentials when AccessID is set and the default AWS chain otherwise.
func NewS3(ctx context.Context, cfg S3Config, l *zap.SugaredLogger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S3 bucket must not be empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessID, cfg.AccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	l.Debugw("S3 media store enabled", "bucket", cfg.Bucket, "region", cfg.Region)
	return &S3{
		client:      s3.NewFromConfig(awsCfg),
		bucket:      cfg.Bucket,
		region:      cfg.Region,
		baseKeyName: cfg.KeyPrefix,
		logger:      l,
	}, nil
}

func (s *S3) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if key == "" || strings.Contains(key, "..") {
		return "", errors.Wrapf(ErrInvalidKey, "key %q", key)
	}
	fullKey := s.baseKeyName + key

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", errors.Wrap(err, "put object")
	}
	s.logger.Infow("media uploaded", "key", fullKey)
	return s.URL(key), nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	fullKey := s.baseKeyName + key
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		s.logger.Errorw("could not delete media", "key", fullKey, "error", err)
		return errors.Wrap(err, "delete object")
	}
	return nil
}

// URL is the virtual-hosted style address of key.
func (s *S3) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s%s", s.bucket, s.region, s.baseKeyName, key)
}
