// Package views keeps the last fetched item list for each dashboard view.
// Every fetch takes a sequence token first and its result is applied only
// if no newer fetch was started in the meantime.
package views

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStale is returned by Refresh when a newer fetch superseded this one.
var ErrStale = errors.New("stale response dropped")

type Token uint64

// Snapshot is a copy of the applied state of a view.
type Snapshot[T any] struct {
	Name      string
	Seq       Token
	Items     []T
	FetchedAt time.Time
}

// View is safe for concurrent use. Items are replaced wholesale, never patched.
type View[T any] struct {
	name string

	mu        sync.Mutex
	issued    Token
	applied   Token
	items     []T
	fetchedAt time.Time

	// OnCommit, when set, is called after a result has been applied.
	OnCommit func(Snapshot[T])
	// OnStale, when set, is called with the dropped token.
	OnStale func(Token)
}

func New[T any](name string) *View[T] {
	return &View[T]{name: name}
}

func (v *View[T]) Name() string { return v.name }

// Begin issues the next sequence token.
func (v *View[T]) Begin() Token {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	return v.issued
}

// Commit applies items if token is the latest one issued. It reports
// whether the items were applied.
func (v *View[T]) Commit(token Token, items []T) bool {
	v.mu.Lock()
	if token != v.issued || token <= v.applied {
		v.mu.Unlock()
		if v.OnStale != nil {
			v.OnStale(token)
		}
		return false
	}
	v.applied = token
	v.items = items
	v.fetchedAt = time.Now()
	snap := v.snapshotLocked()
	v.mu.Unlock()

	if v.OnCommit != nil {
		v.OnCommit(snap)
	}
	return true
}

// Refresh runs fetch under a fresh token and commits the result. A failed
// fetch leaves the previous items in place.
func (v *View[T]) Refresh(ctx context.Context, fetch func(context.Context) ([]T, error)) (Snapshot[T], error) {
	token := v.Begin()
	items, err := fetch(ctx)
	if err != nil {
		return v.Snapshot(), err
	}
	if !v.Commit(token, items) {
		return v.Snapshot(), ErrStale
	}
	return v.Snapshot(), nil
}

func (v *View[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(v.items))
	copy(items, v.items)
	return Snapshot[T]{Name: v.name, Seq: v.applied, Items: items, FetchedAt: v.fetchedAt}
}
