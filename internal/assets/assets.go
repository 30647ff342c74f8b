// Package assets locates and downloads the viewer's model asset.
package assets

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrLocalFile is returned when fetching in an environment without a server.
var ErrLocalFile = errors.New("assets: running from the local filesystem, network fetch unavailable")

// Manager resolves asset paths against an Environment and fetches them,
// keeping fetched bytes in a Cache.
type Manager struct {
	env     *Environment
	prober  *HTTPProber
	fetcher *Fetcher
	cache   *Cache
	log     *zap.Logger
}

// NewManager creates a manager. cache may be nil to disable caching.
func NewManager(env *Environment, prober *HTTPProber, fetcher *Fetcher, cache *Cache, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{env: env, prober: prober, fetcher: fetcher, cache: cache, log: log}
}

// Environment returns the manager's environment.
func (m *Manager) Environment() *Environment {
	return m.env
}

// Exists reports whether path resolves to an existing asset.
func (m *Manager) Exists(ctx context.Context, path string) bool {
	if m.env.LocalFile() || m.prober == nil {
		return false
	}
	return m.prober.Exists(ctx, m.env.URL(path))
}

// Resolve returns the first of primary and alternatives that exists, or
// primary when none does.
func (m *Manager) Resolve(ctx context.Context, primary string, alternatives []string) string {
	if found, ok := FindAvailable(ctx, Candidates(primary, alternatives), m.Exists); ok {
		if found != primary {
			m.log.Info("using alternative asset path", zap.String("path", found))
		}
		return found
	}
	m.log.Warn("no candidate path answered, keeping configured path", zap.String("path", primary))
	return primary
}

// Load returns the bytes of path, from the cache when present.
func (m *Manager) Load(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	if m.env.LocalFile() {
		return nil, ErrLocalFile
	}
	url := m.env.URL(path)
	if m.cache != nil {
		if data, ok := m.cache.Get(url); ok {
			if progress != nil {
				progress(int64(len(data)), int64(len(data)))
			}
			return data, nil
		}
	}

	data, err := m.fetcher.Fetch(ctx, url, progress)
	if err != nil {
		return nil, err
	}
	if m.cache != nil {
		m.cache.Set(url, data)
	}
	return data, nil
}

// Close drops cached data.
func (m *Manager) Close() {
	if m.cache != nil {
		m.cache.Clear()
	}
}
