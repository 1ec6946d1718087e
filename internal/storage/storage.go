// Package storage provides the document persistence capability.
package storage

import "context"

// Store persists named documents as structured text. The session store
// depends on this interface and never on a concrete medium.
type Store interface {
	// Get returns the document under key; ok is false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the whole document under key.
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Memory is an in-process Store used in tests.
type Memory struct {
	docs map[string]string
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{docs: map[string]string{}}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.docs[key]
	return v, ok, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.docs[key] = value
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
