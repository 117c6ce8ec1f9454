package pipeline

import (
	"testing"

	"github.com/felixgeelhaar/statekit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainMachine_Transitions(t *testing.T) {
	t.Parallel()

	run := &chainContext{Chain: ChainDevice}
	interp, err := buildChainMachine(run)
	require.NoError(t, err)
	interp.Start()
	defer interp.Stop()

	assert.Equal(t, StateNotStarted, State(interp.State().Value))

	for _, ev := range []string{EventPreProcessed, EventCoreApplied, EventPostProcessed, EventFinish} {
		interp.Send(statekit.Event{Type: statekit.EventType(ev)})
	}
	assert.Equal(t, StateDone, State(interp.State().Value))

	interp.Send(statekit.Event{Type: EventReset})
	assert.Equal(t, StateNotStarted, State(interp.State().Value))
}

func TestChainMachine_RecordsFailure(t *testing.T) {
	t.Parallel()

	run := &chainContext{Chain: ChainInterface}
	interp, err := buildChainMachine(run)
	require.NoError(t, err)
	interp.Start()
	defer interp.Stop()

	interp.Send(statekit.Event{Type: EventPreProcessed})
	interp.Send(statekit.Event{Type: EventFail, Payload: failure{stage: StageCore, err: assert.AnError}})

	assert.Equal(t, StateFailed, State(interp.State().Value))
	assert.Equal(t, StageCore, run.FailedAt)
	assert.Equal(t, assert.AnError, run.LastError)
}
