package storage

import (
	"fmt"
	"sync"
)

// Memory is an in-process store with the same contract as FileStore. It
// backs sessions that cannot reach a state directory.
type Memory struct {
	mu      sync.RWMutex
	strings map[string]string
	lists   map[string][]string
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		strings: make(map[string]string),
		lists:   make(map[string][]string),
	}
}

// GetString returns the string stored under key.
func (m *Memory) GetString(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, isList := m.lists[key]; isList {
		return "", true, fmt.Errorf("%q holds a list", key)
	}
	v, ok := m.strings[key]
	return v, ok, nil
}

// SetString stores a string under key.
func (m *Memory) SetString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lists, key)
	m.strings[key] = value
	return nil
}

// GetList returns a copy of the list stored under key.
func (m *Memory) GetList(key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, isString := m.strings[key]; isString {
		return nil, fmt.Errorf("%q holds a string", key)
	}
	v, ok := m.lists[key]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), v...), nil
}

// SetList stores a copy of values under key.
func (m *Memory) SetList(key string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.strings, key)
	m.lists[key] = append([]string{}, values...)
	return nil
}
