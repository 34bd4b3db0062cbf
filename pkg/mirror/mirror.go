// Package mirror keeps a local JSON copy of a record set so reads and writes
// can degrade gracefully while the database is unreachable.
package mirror

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// Record is anything the mirror can key.
type Record interface {
	MirrorKey() string
}

type snapshot[T Record] struct {
	Records   []T       `json:"registrations"`
	Pending   []string  `json:"pending"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// File is a mirror stored as one JSON document. All access is serialized and
// every write replaces the file atomically.
type File[T Record] struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a mirror backed by path. The file is created on first write.
func NewFile[T Record](path string) *File[T] {
	return &File[T]{path: path}
}

// Path of the backing file.
func (f *File[T]) Path() string { return f.path }

// All returns every mirrored record, pending ones included.
func (f *File[T]) All() ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		return nil, err
	}
	return s.Records, nil
}

// Get returns the record with the given key.
func (f *File[T]) Get(key string) (T, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	s, err := f.read()
	if err != nil {
		return zero, false, err
	}
	for _, r := range s.Records {
		if r.MirrorKey() == key {
			return r, true, nil
		}
	}
	return zero, false, nil
}

// Put inserts or replaces rec. pending marks it as not yet written to the
// database.
func (f *File[T]) Put(rec T, pending bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		return err
	}
	key := rec.MirrorKey()
	replaced := false
	for i := range s.Records {
		if s.Records[i].MirrorKey() == key {
			s.Records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		s.Records = append(s.Records, rec)
	}
	s.Pending = removeKey(s.Pending, key)
	if pending {
		s.Pending = append(s.Pending, key)
	}
	return f.write(s)
}

// Merge replaces the synced part of the mirror with remote. Pending records
// missing from remote are kept; pending records present in remote are
// considered synced.
func (f *File[T]) Merge(remote []T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		return err
	}

	inRemote := make(map[string]bool, len(remote))
	for _, r := range remote {
		inRemote[r.MirrorKey()] = true
	}
	pending := make(map[string]bool, len(s.Pending))
	for _, k := range s.Pending {
		pending[k] = true
	}

	merged := make([]T, 0, len(remote)+len(s.Pending))
	merged = append(merged, remote...)
	var stillPending []string
	for _, r := range s.Records {
		k := r.MirrorKey()
		if pending[k] && !inRemote[k] {
			merged = append(merged, r)
			stillPending = append(stillPending, k)
		}
	}

	s.Records = merged
	s.Pending = stillPending
	return f.write(s)
}

// Remove deletes the record with key. Missing keys are ignored.
func (f *File[T]) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		return err
	}
	out := s.Records[:0]
	for _, r := range s.Records {
		if r.MirrorKey() != key {
			out = append(out, r)
		}
	}
	s.Records = out
	s.Pending = removeKey(s.Pending, key)
	return f.write(s)
}

// Pending returns records written only to the mirror.
func (f *File[T]) Pending() ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		return nil, err
	}
	pending := make(map[string]bool, len(s.Pending))
	for _, k := range s.Pending {
		pending[k] = true
	}
	var out []T
	for _, r := range s.Records {
		if pending[r.MirrorKey()] {
			out = append(out, r)
		}
	}
	return out, nil
}

// MarkSynced clears the pending flag of the given keys.
func (f *File[T]) MarkSynced(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		return err
	}
	for _, k := range keys {
		s.Pending = removeKey(s.Pending, k)
	}
	return f.write(s)
}

// PendingCount is the number of records awaiting sync.
func (f *File[T]) PendingCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		return 0, err
	}
	return len(s.Pending), nil
}

func (f *File[T]) read() (*snapshot[T], error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return &snapshot[T]{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mirror: %w", err)
	}
	if len(data) == 0 {
		return &snapshot[T]{}, nil
	}
	var s snapshot[T]
	if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode mirror %s: %w", f.path, err)
	}
	return &s, nil
}

func (f *File[T]) write(s *snapshot[T]) error {
	s.UpdatedAt = time.Now().UTC()
	data, err := sonic.ConfigStd.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".mirror-*.json")
	if err != nil {
		return fmt.Errorf("create mirror temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync mirror: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mirror: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	return nil
}

func removeKey(keys []string, key string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
