package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	chaterr "github.com/abdul-hamid-achik/pplxchat/internal/errors"
)

// FileStore keeps all values in one JSON object file readable only by the owner.
// Every Get re-reads the file so changes from other processes are seen.
type FileStore struct {
	path string

	mu      sync.Mutex
	written map[string]string // last value this process put, per key
}

// NewFileStore creates a store backed by path. The file is created on first Put.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store needs a path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: abs, written: make(map[string]string)}, nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.readAll()
	if err != nil {
		return "", false, chaterr.StoreReadFailed(key, err)
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.readAll()
	if err != nil {
		return chaterr.StoreWriteFailed(key, err)
	}
	values[key] = value

	if err := s.writeAll(values); err != nil {
		return chaterr.StoreWriteFailed(key, err)
	}
	s.written[key] = value
	return nil
}

func (s *FileStore) Close() error { return nil }

// readAll loads the whole file. A missing or empty file is an empty map.
func (s *FileStore) readAll() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return values, nil
}

// writeAll replaces the file atomically: temp file in the same directory, then rename.
func (s *FileStore) writeAll(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".secrets-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Watch reports changes to key made by other processes. The directory is
// watched rather than the file because writers replace the file by rename.
// Rapid bursts of events are coalesced.
func (s *FileStore) Watch(ctx context.Context, key string, fn func(value string)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Debug("watching %s for %s", s.path, key)

	seen, _, _ := s.Get(ctx, key)
	const debounce = 100 * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error: %v", err)

		case <-timer.C:
			value, _, err := s.Get(ctx, key)
			if err != nil {
				log.Warn("reload after change: %v", err)
				continue
			}
			if value == seen {
				continue
			}
			seen = value

			s.mu.Lock()
			own, wrote := s.written[key]
			s.mu.Unlock()
			if wrote && own == value {
				continue
			}
			fn(value)
		}
	}
}
