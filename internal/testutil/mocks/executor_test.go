package mocks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandExecutor_RecordsCalls(t *testing.T) {
	t.Parallel()

	m := NewCommandExecutor()
	cmds := []string{"no username alice", "username bob"}

	require.NoError(t, m.Execute(context.Background(), "r1", cmds))
	cmds[0] = "mutated"

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "r1", calls[0].Device)
	assert.Equal(t, []string{"no username alice", "username bob"}, calls[0].Commands)
}

func TestCommandExecutor_AddError(t *testing.T) {
	t.Parallel()

	m := NewCommandExecutor()
	boom := errors.New("session closed")
	m.AddError("r2", boom)

	assert.NoError(t, m.Execute(context.Background(), "r1", nil))
	assert.ErrorIs(t, m.Execute(context.Background(), "r2", nil), boom)
	assert.Len(t, m.CallsFor("r2"), 1)
}

func TestCommandExecutor_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewCommandExecutor()
	assert.ErrorIs(t, m.Execute(ctx, "r1", []string{"x"}), context.Canceled)
	assert.Empty(t, m.Calls())
}

func TestCommandExecutor_Reset(t *testing.T) {
	t.Parallel()

	m := NewCommandExecutor()
	m.AddError("r1", errors.New("x"))
	_ = m.Execute(context.Background(), "r1", nil)

	m.Reset()

	assert.Empty(t, m.Calls())
	assert.NoError(t, m.Execute(context.Background(), "r1", nil))
}

func TestCommandExecutor_ThreadSafety(t *testing.T) {
	t.Parallel()

	m := NewCommandExecutor()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Execute(context.Background(), "r1", []string{"x"})
			_ = m.Calls()
		}()
	}
	wg.Wait()

	assert.Len(t, m.Calls(), 50)
}
