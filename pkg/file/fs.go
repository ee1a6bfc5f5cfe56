package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

// FSStore persists cache entries as JSON files on a billy filesystem, one
// directory per namespace and one file per entry. Writes go through a temp
// file and a rename, so a reader never sees a partial entry.
type FSStore struct {
	mu sync.RWMutex
	fs billy.Filesystem
}

var _ cache.Store = (*FSStore)(nil)

// NewFSStore returns a Store on top of fs.
func NewFSStore(fs billy.Filesystem) *FSStore {
	return &FSStore{fs: fs}
}

// NewLocalStore returns a Store rooted at dir on the local disk.
func NewLocalStore(cfg Config) (*FSStore, error) {
	if cfg.Dir == "" {
		return nil, ErrInvalidConfig
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Join(ErrFailedToCreateDirectory, err)
	}
	return NewFSStore(osfs.New(cfg.Dir)), nil
}

// NewMemoryStore returns a Store on an in-memory filesystem.
func NewMemoryStore() *FSStore {
	return NewFSStore(memfs.New())
}

// Load returns every entry of namespace. Files that do not decode are deleted
// and left out of the result.
func (s *FSStore) Load(_ context.Context, namespace string) (map[string]cache.SerializedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := namespaceDir(namespace)
	infos, err := s.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]cache.SerializedEntry{}, nil
		}
		return nil, errors.Join(ErrFailedToReadDirectory, err)
	}

	out := make(map[string]cache.SerializedEntry, len(infos))
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			continue
		}
		name := path.Join(dir, info.Name())
		raw, err := util.ReadFile(s.fs, name)
		if err != nil {
			return nil, errors.Join(ErrFailedToReadFile, err)
		}
		var e cache.SerializedEntry
		if err := json.Unmarshal(raw, &e); err != nil || e.Key == "" {
			if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, errors.Join(ErrFailedToDeleteFile, err)
			}
			continue
		}
		out[e.Key] = e
	}
	return out, nil
}

func (s *FSStore) Save(_ context.Context, namespace, key string, e cache.SerializedEntry) error {
	if e.Key == "" {
		e.Key = key
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return errors.Join(cache.ErrSerialization, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := namespaceDir(namespace)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Join(ErrFailedToCreateDirectory, err)
	}

	tmp, err := util.TempFile(s.fs, dir, ".tmp-")
	if err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmp.Name())
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmp.Name())
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err := s.fs.Rename(tmp.Name(), path.Join(dir, entryName(key))); err != nil {
		_ = s.fs.Remove(tmp.Name())
		return errors.Join(ErrFailedToWriteFile, err)
	}
	return nil
}

func (s *FSStore) Remove(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fs.Remove(path.Join(namespaceDir(namespace), entryName(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(ErrFailedToDeleteFile, err)
	}
	return nil
}

func (s *FSStore) Clear(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := util.RemoveAll(s.fs, namespaceDir(namespace)); err != nil {
		return errors.Join(ErrFailedToDeleteDirectory, err)
	}
	return nil
}

// Healthcheck verifies the root directory is writable.
func (s *FSStore) Healthcheck(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := util.TempFile(s.fs, ".", ".health-")
	if err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	name := f.Name()
	_ = f.Close()
	if err := s.fs.Remove(name); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

// Unwrap returns the underlying billy.Filesystem.
func (s *FSStore) Unwrap() billy.Filesystem {
	return s.fs
}
