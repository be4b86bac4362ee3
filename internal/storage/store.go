package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/logging"
)

// StateFile is the file name used inside the state directory.
const StateFile = "state.json"

// FileStore is a durable key/value store kept in one JSON document. Reads
// are served from memory; every write rewrites the document atomically.
type FileStore struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	cache sync.Map // key -> json.RawMessage
}

// Open loads the store at dir/state.json, creating dir when missing. A
// corrupt document is set aside and replaced with an empty store.
func Open(dir string, logger *zap.Logger) (*FileStore, error) {
	logger = logging.OrNop(logger)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	s := &FileStore{path: filepath.Join(dir, StateFile), logger: logger}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &doc); err != nil {
		backup := s.path + ".corrupt"
		logger.Warn("state file corrupt, starting empty",
			zap.String("path", s.path),
			zap.String("backup", backup),
			zap.Error(err))
		_ = os.Rename(s.path, backup)
		return s, nil
	}
	for k, v := range doc {
		s.cache.Store(k, v)
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// GetString returns the string stored under key.
func (s *FileStore) GetString(key string) (string, bool, error) {
	var v string
	found, err := s.get(key, &v)
	return v, found, err
}

// SetString stores a string under key.
func (s *FileStore) SetString(key, value string) error {
	return s.set(key, value)
}

// GetList returns the string list stored under key, or nil when absent.
func (s *FileStore) GetList(key string) ([]string, error) {
	var v []string
	if _, err := s.get(key, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// SetList stores a string list under key.
func (s *FileStore) SetList(key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	return s.set(key, values)
}

// Delete removes key.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(key)
	return s.flush()
}

// Keys returns all stored keys, sorted.
func (s *FileStore) Keys() []string {
	var keys []string
	s.cache.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

func (s *FileStore) get(key string, dst any) (bool, error) {
	raw, ok := s.cache.Load(key)
	if !ok {
		return false, nil
	}
	if err := sonic.Unmarshal(raw.(json.RawMessage), dst); err != nil {
		return true, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

func (s *FileStore) set(key string, value any) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Store(key, json.RawMessage(data))
	return s.flush()
}

// flush writes the whole document through a temp file and rename. Callers
// hold s.mu.
func (s *FileStore) flush() error {
	doc := make(map[string]json.RawMessage)
	s.cache.Range(func(k, v any) bool {
		doc[k.(string)] = v.(json.RawMessage)
		return true
	})

	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace state: %w", err)
	}
	return nil
}
