// ABOUTME: In-memory item store and cookie jar for tests and ephemeral sessions
// ABOUTME: Same semantics as the SQLite store without touching disk

package storage

import (
	"sync"
	"time"
)

// Memory is an in-process store
type Memory struct {
	mu      sync.Mutex
	items   map[string]string
	cookies map[string]Cookie
	now     func() time.Time
}

var (
	_ Items   = (*Memory)(nil)
	_ Cookies = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		items:   make(map[string]string),
		cookies: make(map[string]Cookie),
		now:     time.Now,
	}
}

// SetClock replaces the clock used for cookie expiry
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) GetCookie(name string) (*Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cookies[name]
	if !ok {
		return nil, nil
	}
	if c.Expired(m.now()) {
		delete(m.cookies, name)
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) SetCookie(c Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Path == "" {
		c.Path = "/"
	}
	m.cookies[c.Name] = c
	return nil
}

func (m *Memory) RemoveCookie(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cookies, name)
	return nil
}
