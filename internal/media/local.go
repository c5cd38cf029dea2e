package media

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LocalURLPrefix is the path the HTTP server serves the local media folder under.
const LocalURLPrefix = "/media/"

type Local struct {
	baseFolder string
	logger     *zap.SugaredLogger
}

func NewLocal(baseFolder string, l *zap.SugaredLogger) (*Local, error) {
	if err := os.MkdirAll(baseFolder, 0o755); err != nil {
		return nil, errors.Wrap(err, "create media folder")
	}
	return &Local{
		baseFolder: baseFolder,
		logger:     l,
	}, nil
}

func (f *Local) BaseFolder() string {
	return f.baseFolder
}

func (f *Local) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	filePath, err := f.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return "", errors.Wrap(err, "create key folder")
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrap(err, "create file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return "", errors.Wrap(err, "write file")
	}
	f.logger.Debugw("media stored", "key", key, "path", filePath)
	return path.Join(LocalURLPrefix, key), nil
}

func (f *Local) Delete(_ context.Context, key string) error {
	filePath, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove file")
	}
	return nil
}

func (f *Local) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", errors.Wrapf(ErrInvalidKey, "key %q", key)
	}
	return filepath.Join(f.baseFolder, filepath.FromSlash(key)), nil
}
