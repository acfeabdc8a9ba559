package clipboard

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the clipboard file inside a FileBackend directory.
const FileName = "clipboard.json"

// FileBackend keeps the clipboard in a single JSON file, so separate CLI
// invocations on the same machine share it.
type FileBackend struct {
	mu   sync.Mutex
	path string
	ttl  time.Duration
}

// NewFileBackend creates a file clipboard in dir. The directory is created
// if needed. An empty dir defaults to ~/.config/nodeflow. Entries older than
// ttl read as empty; ttl <= 0 keeps them forever.
func NewFileBackend(dir string, ttl time.Duration) (*FileBackend, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "nodeflow")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create clipboard dir: %w", classify(err))
	}
	return &FileBackend{path: filepath.Join(dir, FileName), ttl: ttl}, nil
}

// Path returns the clipboard file location.
func (f *FileBackend) Path() string { return f.path }

// fileEntry wraps clipboard data with metadata.
type fileEntry struct {
	Data      json.RawMessage `json:"data,omitempty"`
	Text      string          `json:"text,omitempty"`
	WrittenAt time.Time       `json:"written_at"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
}

// Write replaces the file content.
func (f *FileBackend) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := fileEntry{WrittenAt: time.Now()}
	if len(data) > 0 && json.Valid(data) {
		entry.Data = data
	} else {
		entry.Text = string(data)
	}
	if f.ttl > 0 {
		entry.ExpiresAt = entry.WrittenAt.Add(f.ttl)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal clipboard: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("write clipboard file: %w", classify(err))
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("write clipboard file: %w", classify(err))
	}
	return nil
}

// Read returns the stored bytes. A missing, corrupt or expired file reads
// as empty.
func (f *FileBackend) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read clipboard file: %w", classify(err))
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Invalid entry - treat as empty
		_ = os.Remove(f.path)
		return nil, ErrEmpty
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(f.path)
		return nil, ErrEmpty
	}

	if entry.Data != nil {
		return entry.Data, nil
	}
	return []byte(entry.Text), nil
}

// Clear removes the clipboard file.
func (f *FileBackend) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file backend.
func (f *FileBackend) Close() error {
	return nil
}

// classify tags permission failures so callers can tell them apart.
func classify(err error) error {
	if os.IsPermission(err) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Ensure FileBackend implements Backend.
var _ Backend = (*FileBackend)(nil)
