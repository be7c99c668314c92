package downloader

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Filesystem caches downloaded archives as files in Dir, one per
// URL. A file's modification time is when it was retrieved.
type Filesystem struct {
	Dir     string
	Logger  *zap.Logger
	TimeNow func() time.Time

	mutex sync.Mutex
}

func NewFilesystem(dir string, logger *zap.Logger) (*Filesystem, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filesystem{
		Dir:     dir,
		Logger:  logger,
		TimeNow: time.Now,
	}, nil
}

func (f *Filesystem) path(url string) string {
	return filepath.Join(f.Dir, fmt.Sprintf("%x.zip", sha256.Sum256([]byte(url))))
}

func (f *Filesystem) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	path := f.path(url)

	if options.Cache {
		info, err := os.Stat(path)
		switch {
		case err == nil && info.ModTime().Add(options.CacheTTL).After(f.TimeNow()):
			body, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, "reading %s", path)
			}
			f.Logger.Debug("cache hit", zap.String("url", url))
			return body, nil
		case err == nil:
			f.Logger.Debug("cache expired", zap.String("url", url))
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(err, "checking %s", path)
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		if err := os.WriteFile(path, body, 0644); err != nil {
			return nil, errors.Wrapf(err, "writing %s", path)
		}
		now := f.TimeNow()
		if err := os.Chtimes(path, now, now); err != nil {
			return nil, errors.Wrapf(err, "touching %s", path)
		}
	}

	return body, nil
}
