package downloader

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

type GetOptions struct {
	// Bodies larger than this are truncated. Zero means no limit.
	MaxSize  int
	Timeout  time.Duration
	Cache    bool
	CacheTTL time.Duration
}

// Fetches feed archives, possibly from a cache.
type Downloader interface {
	Get(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error)
}

// HTTPGet fetches url without any caching. Anything but 200 OK is
// an error wrapping ErrUnexpectedStatus.
func HTTPGet(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error) {
	client := &http.Client{Timeout: options.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	for k, v := range headers {
		req.Header.Add(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "%s: %d", url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if options.MaxSize > 0 {
		body = io.LimitReader(resp.Body, int64(options.MaxSize))
	}

	buf, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "reading body")
	}

	return buf, nil
}
