package classify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"sync"
	"syscall"

	"github.com/vietddude/paramretry/internal/core/domain"
)

var (
	// ErrUnknownKind is returned when a configured kind name is not registered.
	ErrUnknownKind = errors.New("unknown failure kind")

	// ErrDuplicateKind is returned when a kind name is registered twice.
	ErrDuplicateKind = errors.New("duplicate failure kind")
)

// Registry resolves kind names used in configuration files.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]domain.Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]domain.Kind)}
}

// DefaultRegistry returns a registry holding the built-in kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, k := range builtins() {
		_ = r.Register(k)
	}
	return r
}

func builtins() []domain.Kind {
	return []domain.Kind{
		Sentinel("deadline_exceeded", context.DeadlineExceeded),
		Sentinel("canceled", context.Canceled),
		Func("timeout", isTimeout),
		Sentinel("eof", io.EOF),
		Sentinel("unexpected_eof", io.ErrUnexpectedEOF),
		Sentinel("connection_reset", syscall.ECONNRESET),
		Sentinel("connection_refused", syscall.ECONNREFUSED),
		Sentinel("closed", net.ErrClosed),
		Type[net.Error]("net"),
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// Register adds a kind under its name.
func (r *Registry) Register(k domain.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.kinds[k.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, k.Name())
	}
	r.kinds[k.Name()] = k
	return nil
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (domain.Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, name)
	}
	return k, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
