package views

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitLatestOnly(t *testing.T) {
	v := New[int]("heatmap")

	older := v.Begin()
	newer := v.Begin()

	assert.True(t, v.Commit(newer, []int{2}))
	// older response arrives after the newer one
	assert.False(t, v.Commit(older, []int{1}))

	snap := v.Snapshot()
	assert.Equal(t, []int{2}, snap.Items)
	assert.Equal(t, newer, snap.Seq)
}

func TestCommitOlderBeforeNewerIsDropped(t *testing.T) {
	v := New[string]("reports")
	older := v.Begin()
	newer := v.Begin()

	assert.False(t, v.Commit(older, []string{"old"}))
	assert.True(t, v.Commit(newer, []string{"new"}))
	assert.Equal(t, []string{"new"}, v.Snapshot().Items)
}

func TestCommitTwiceWithSameToken(t *testing.T) {
	v := New[int]("x")
	tok := v.Begin()
	require.True(t, v.Commit(tok, []int{1}))
	assert.False(t, v.Commit(tok, []int{9}))
	assert.Equal(t, []int{1}, v.Snapshot().Items)
}

func TestRefreshKeepsItemsOnError(t *testing.T) {
	v := New[int]("tiles")
	_, err := v.Refresh(context.Background(), func(context.Context) ([]int, error) { return []int{1, 2}, nil })
	require.NoError(t, err)

	boom := errors.New("gateway down")
	snap, err := v.Refresh(context.Background(), func(context.Context) ([]int, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, snap.Items)
}

func TestRefreshOverlapping(t *testing.T) {
	v := New[int]("heatmap")
	var stale []Token
	var commits int
	v.OnStale = func(tok Token) { stale = append(stale, tok) }
	v.OnCommit = func(Snapshot[int]) { commits++ }

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup
	var slowErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = v.Refresh(context.Background(), func(context.Context) ([]int, error) {
			close(started)
			<-release
			return []int{1}, nil
		})
	}()

	<-started
	_, err := v.Refresh(context.Background(), func(context.Context) ([]int, error) { return []int{2}, nil })
	require.NoError(t, err)
	close(release)
	wg.Wait()

	assert.ErrorIs(t, slowErr, ErrStale)
	assert.Equal(t, []int{2}, v.Snapshot().Items)
	assert.Equal(t, []Token{1}, stale)
	assert.Equal(t, 1, commits)
}

func TestSnapshotIsCopy(t *testing.T) {
	v := New[int]("x")
	v.Commit(v.Begin(), []int{1, 2, 3})
	snap := v.Snapshot()
	snap.Items[0] = 42
	assert.Equal(t, 1, v.Snapshot().Items[0])
}
