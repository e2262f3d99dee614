// Package assets resolves XKT sources from local files and HTTP servers and caches
// their bytes.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when no source serves a path.
var ErrNotFound = errors.New("asset not found")

// Source fetches raw bytes by name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FileSource reads files relative to Root, or as given when Root is empty.
type FileSource struct {
	Root string
}

// Fetch reads a file.
func (s FileSource) Fetch(_ context.Context, name string) ([]byte, error) {
	path := name
	if s.Root != "" && !filepath.IsAbs(name) {
		path = filepath.Join(s.Root, name)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, err
}

// HTTPSource downloads over HTTP. Relative names are resolved against BaseURL.
type HTTPSource struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewHTTPSource creates an HTTP source with the given request timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) resolve(name string) (string, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() || s.BaseURL == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Fetch performs a GET request and returns the body of a 200 response.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	target, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: %s", target, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// IsURL reports whether name is an http(s) URL.
func IsURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// Manager routes names to the file or HTTP source and caches results.
type Manager struct {
	files FileSource
	web   *HTTPSource
	cache *Cache
}

// NewManager creates a manager. maxEntries bounds the cache; zero disables it.
func NewManager(files FileSource, web *HTTPSource, maxEntries int) *Manager {
	if web == nil {
		web = &HTTPSource{}
	}
	return &Manager{
		files: files,
		web:   web,
		cache: NewCache(maxEntries),
	}
}

// Load returns the bytes for name. URLs go to HTTP, as do relative names when a
// base URL is configured; everything else is read from disk.
func (m *Manager) Load(ctx context.Context, name string) ([]byte, error) {
	// Check cache first
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	data, err := m.source(name).Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	m.cache.Set(name, data)
	return data, nil
}

func (m *Manager) source(name string) Source {
	if IsURL(name) || (m.web.BaseURL != "" && !filepath.IsAbs(name)) {
		return m.web
	}
	return m.files
}

// Cache returns the manager's cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Close drops cached data.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is an in-memory byte cache evicting the oldest entry once full.
type Cache struct {
	data  map[string][]byte
	order []string
	max   int
	mu    sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a cache holding at most maxEntries items; zero disables caching.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		data: make(map[string][]byte),
		max:  maxEntries,
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.max <= 0 {
		return
	}
	if _, ok := c.data[key]; !ok {
		if len(c.order) >= c.max {
			delete(c.data, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, key)
	}
	c.data[key] = data
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.order = nil
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
