package config

import "sync"

const settingsCacheSize = 1

// CacheInfo reports the state of a Provider's settings slot.
type CacheInfo struct {
	Hits        int
	Misses      int
	MaxSize     int
	CurrentSize int
}

// Provider memoizes a single Settings instance. It is safe for concurrent use;
// a Reload never interleaves with the construction triggered by a Get.
type Provider struct {
	opts []Option

	mu       sync.Mutex
	settings *Settings
	hits     int
	misses   int
}

// NewProvider returns an empty provider. The options are forwarded to every
// settings construction.
func NewProvider(opts ...Option) *Provider {
	return &Provider{opts: opts}
}

// Get returns the cached settings, resolving them from the environment on the
// first call after construction or Reload. A failed resolution counts as a
// miss and leaves the slot empty.
func (p *Provider) Get() (*Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.settings != nil {
		p.hits++
		return p.settings, nil
	}

	p.misses++
	settings, err := NewSettings(p.opts...)
	if err != nil {
		return nil, err
	}
	p.settings = settings
	return settings, nil
}

// MustGet is like Get but panics on misconfiguration.
func (p *Provider) MustGet() *Settings {
	settings, err := p.Get()
	if err != nil {
		panic(err)
	}
	return settings
}

// Reload drops the cached settings and resets the counters. The next Get
// reads the environment again.
func (p *Provider) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.settings = nil
	p.hits = 0
	p.misses = 0
}

// IsCached reports whether settings are currently held.
func (p *Provider) IsCached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings != nil
}

// CacheInfo returns a snapshot of the slot counters.
func (p *Provider) CacheInfo() CacheInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	size := 0
	if p.settings != nil {
		size = 1
	}
	return CacheInfo{
		Hits:        p.hits,
		Misses:      p.misses,
		MaxSize:     settingsCacheSize,
		CurrentSize: size,
	}
}
