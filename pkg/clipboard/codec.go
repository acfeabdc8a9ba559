package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
)

// Backend kinds accepted by [Open].
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindRedis    = "redis"
	KindTerminal = "terminal"
	KindNone     = "none"
)

// Codec moves payloads through a backend and maps backend failures onto
// the CLIPBOARD_UNAVAILABLE code.
type Codec struct {
	backend Backend
	name    string
}

// NewCodec returns a codec over b. A nil backend behaves like [NullBackend].
func NewCodec(b Backend) *Codec {
	if b == nil {
		b = NewNullBackend()
	}
	return &Codec{backend: b, name: BackendName(b)}
}

// Backend returns the underlying backend.
func (c *Codec) Backend() Backend { return c.backend }

// Name returns the backend kind, for logs and metrics.
func (c *Codec) Name() string { return c.name }

// Write encodes p and stores it. It returns the number of bytes written.
func (c *Codec) Write(ctx context.Context, p Payload) (int, error) {
	data, err := Encode(p)
	if err != nil {
		return 0, err
	}
	if err := c.backend.Write(ctx, data); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return 0, cerr
		}
		return 0, unavailable(err, "write")
	}
	return len(data), nil
}

// Read fetches and decodes the clipboard. An empty clipboard yields an
// empty payload and no error. Undecodable content is a SCHEMA_ERROR. If
// ctx ends during the read, its error is returned as is.
func (c *Codec) Read(ctx context.Context) (Payload, int, error) {
	data, err := c.backend.Read(ctx)
	if cerr := ctx.Err(); cerr != nil {
		return Payload{}, 0, cerr
	}
	if errors.Is(err, ErrEmpty) {
		return Payload{}, 0, nil
	}
	if err != nil {
		return Payload{}, 0, unavailable(err, "read")
	}
	if len(data) == 0 {
		return Payload{}, 0, nil
	}
	p, err := Deserialize(data)
	if err != nil {
		return Payload{}, len(data), err
	}
	return p, len(data), nil
}

// Close closes the backend.
func (c *Codec) Close() error { return c.backend.Close() }

func unavailable(err error, op string) error {
	if errors.Is(err, ErrPermissionDenied) {
		return nferrors.Wrap(nferrors.ErrCodeClipboardUnavailable, err, "clipboard %s: permission denied", op)
	}
	return nferrors.Wrap(nferrors.ErrCodeClipboardUnavailable, err, "clipboard %s failed", op)
}

// BackendName returns the kind of a backend implementation.
func BackendName(b Backend) string {
	switch b.(type) {
	case *MemoryBackend:
		return KindMemory
	case *FileBackend:
		return KindFile
	case *RedisBackend:
		return KindRedis
	case *TerminalBackend:
		return KindTerminal
	case *NullBackend, NullBackend:
		return KindNone
	case *DenyBackend:
		return "deny"
	default:
		return fmt.Sprintf("%T", b)
	}
}

// Config selects and configures a backend for [Open].
type Config struct {
	Kind string

	// Dir and TTL configure the file backend.
	Dir string
	TTL time.Duration

	// Redis configures the redis backend.
	Redis RedisConfig

	// TerminalMode and Out configure the terminal backend.
	TerminalMode string
	Out          io.Writer
}

// Open builds the backend named by cfg.Kind. An empty kind means memory.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Kind {
	case "", KindMemory:
		return NewMemoryBackend(), nil
	case KindFile:
		b, err := NewFileBackend(cfg.Dir, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return b, nil
	case KindRedis:
		b, err := NewRedisBackend(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return b, nil
	case KindTerminal:
		return NewTerminalBackend(cfg.Out, cfg.TerminalMode), nil
	case KindNone:
		return NewNullBackend(), nil
	default:
		return nil, nferrors.New(nferrors.ErrCodeInvalidInput, "unknown clipboard backend %q", cfg.Kind)
	}
}
