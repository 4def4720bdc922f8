// Package remote defines the mirrors that follow the authoritative store and
// builds them only when they are first needed.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"bilancio/internal/core"
)

// Mirror receives committed mutations. Both operations must be idempotent
// because events can be delivered more than once.
type Mirror interface {
	Upsert(ctx context.Context, t core.Transaction) error
	Delete(ctx context.Context, id int64) error
	Close() error
}

// Factory builds a mirror. It may dial out, so it takes a context.
type Factory func(ctx context.Context) (Mirror, error)

// Lazy defers construction of a mirror until its first use. Concurrent first
// uses share one build; a failed build is retried on the next use.
type Lazy struct {
	name  string
	build Factory

	group singleflight.Group
	mu    sync.Mutex
	m     Mirror
}

var _ Mirror = (*Lazy)(nil)

func NewLazy(name string, build Factory) *Lazy {
	return &Lazy{name: name, build: build}
}

func (l *Lazy) Name() string { return l.name }

// Built reports whether the mirror has been constructed.
func (l *Lazy) Built() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m != nil
}

// Get returns the mirror, building it if needed.
func (l *Lazy) Get(ctx context.Context) (Mirror, error) {
	l.mu.Lock()
	m := l.m
	l.mu.Unlock()
	if m != nil {
		return m, nil
	}

	v, err, _ := l.group.Do(l.name, func() (any, error) {
		l.mu.Lock()
		if l.m != nil {
			defer l.mu.Unlock()
			return l.m, nil
		}
		l.mu.Unlock()

		slog.InfoContext(ctx, "Building remote mirror", "mirror", l.name)
		built, err := l.build(ctx)
		if err != nil {
			return nil, fmt.Errorf("build %s mirror: %w", l.name, err)
		}
		l.mu.Lock()
		l.m = built
		l.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Mirror), nil
}

func (l *Lazy) Upsert(ctx context.Context, t core.Transaction) error {
	m, err := l.Get(ctx)
	if err != nil {
		return err
	}
	return m.Upsert(ctx, t)
}

func (l *Lazy) Delete(ctx context.Context, id int64) error {
	m, err := l.Get(ctx)
	if err != nil {
		return err
	}
	return m.Delete(ctx, id)
}

// Close releases the mirror if it was ever built.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		return nil
	}
	err := l.m.Close()
	l.m = nil
	return err
}
