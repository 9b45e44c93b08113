package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
)

const lockRetryDelay = 50 * time.Millisecond

// FileStore implements KV as a single JSON document on disk. A sidecar lock
// file guards reads and writes across processes; mu guards them within one,
// since a Flock already held by this process admits every goroutine.
type FileStore struct {
	mu   sync.RWMutex
	path string
	lock *flock.Flock
}

// NewFile creates a FileStore backed by the JSON file at path.
func NewFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, eris.New("file: path is required")
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Migrate creates the parent directory.
func (f *FileStore) Migrate(_ context.Context) error {
	return eris.Wrap(os.MkdirAll(filepath.Dir(f.path), 0o755), "file: create data dir")
}

func (f *FileStore) Close() error {
	return f.lock.Close()
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ok, err := f.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil || !ok {
		return nil, eris.Wrap(errOrTimeout(err), "file: acquire read lock")
	}
	defer func() { _ = f.lock.Unlock() }()

	doc, err := f.readDoc()
	if err != nil {
		return nil, err
	}
	v, found := doc[key]
	if !found {
		return nil, nil
	}
	return v, nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return eris.Errorf("file: value for %q is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ok, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !ok {
		return eris.Wrap(errOrTimeout(err), "file: acquire write lock")
	}
	defer func() { _ = f.lock.Unlock() }()

	doc, err := f.readDoc()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(value)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "file: marshal document")
	}

	return f.replace(data)
}

// replace writes data to a unique temp file beside the document and renames
// it into place.
func (f *FileStore) replace(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "file: create temp file")
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return eris.Wrap(err, "file: write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return eris.Wrap(err, "file: close temp file")
	}
	if err := os.Rename(name, f.path); err != nil {
		_ = os.Remove(name)
		return eris.Wrap(err, "file: replace document")
	}
	return nil
}

func (f *FileStore) readDoc() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "file: read document")
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "file: unmarshal document")
	}
	return doc, nil
}

func errOrTimeout(err error) error {
	if err != nil {
		return err
	}
	return eris.New("lock not acquired")
}
