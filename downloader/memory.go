package downloader

import (
	"context"
	"sync"
	"time"
)

// Memory keeps downloaded archives in memory for options.CacheTTL.
type Memory struct {
	TimeNow func() time.Time

	mutex sync.Mutex
	cache map[string]memoryEntry
}

type memoryEntry struct {
	body    []byte
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{
		TimeNow: time.Now,
		cache:   map[string]memoryEntry{},
	}
}

func (m *Memory) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	if options.Cache {
		m.mutex.Lock()
		entry, found := m.cache[url]
		m.mutex.Unlock()
		if found && entry.expires.After(m.TimeNow()) {
			return entry.body, nil
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		m.mutex.Lock()
		m.cache[url] = memoryEntry{
			body:    body,
			expires: m.TimeNow().Add(options.CacheTTL),
		}
		m.mutex.Unlock()
	}

	return body, nil
}
