package pipeline

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// Chain names one hook chain of an onboarding run.
type Chain string

const (
	// ChainDevice finalizes the device properties.
	ChainDevice Chain = "device"
	// ChainInterface finalizes the interface list.
	ChainInterface Chain = "interface"
	// ChainConfigContext finalizes the config context.
	ChainConfigContext Chain = "config_context"
)

// Chains returns the chains in execution order.
func Chains() []Chain {
	return []Chain{ChainDevice, ChainInterface, ChainConfigContext}
}

// State is the position of a chain in its state machine.
type State string

const (
	// StateNotStarted indicates the chain has not run.
	StateNotStarted State = "not_started"
	// StatePreProcessed indicates the pre stage completed.
	StatePreProcessed State = "pre_processed"
	// StateCoreApplied indicates the core stage completed.
	StateCoreApplied State = "core_applied"
	// StatePostProcessed indicates the post stage completed.
	StatePostProcessed State = "post_processed"
	// StateDone indicates the chain finished.
	StateDone State = "done"
	// StateFailed indicates a stage returned an error.
	StateFailed State = "failed"
)

// Stage names the step of a chain that runs between two states.
type Stage string

const (
	// StageParse builds the platform parser before any chain runs.
	StageParse Stage = "parse"
	// StagePre runs before the core step.
	StagePre Stage = "pre"
	// StageCore applies the chain's own work.
	StageCore Stage = "core"
	// StagePost runs after the core step.
	StagePost Stage = "post"
)

// Event types for the chain state machine.
const (
	EventPreProcessed  = "PRE_PROCESSED"
	EventCoreApplied   = "CORE_APPLIED"
	EventPostProcessed = "POST_PROCESSED"
	EventFinish        = "FINISH"
	EventFail          = "FAIL"
	EventReset         = "RESET"
)

// chainContext is the statekit context of one chain run.
type chainContext struct {
	Chain     Chain
	FailedAt  Stage
	LastError error
}

// step is one stage of a chain. A nil step is a no-op.
type step func(ctx context.Context) error

// chainSteps lists a chain's stages in order.
type chainSteps struct {
	pre, core, post step
}

// buildChainMachine constructs the chain state machine using statekit.
// The run pointer is captured by closures so actions update the caller's copy.
func buildChainMachine(run *chainContext) (*statekit.Interpreter[chainContext], error) {
	machine, err := statekit.NewMachine[chainContext]("chain-"+string(run.Chain)).
		WithInitial("not_started").
		WithContext(*run).
		WithAction("recordFailure", func(_ *chainContext, event statekit.Event) {
			if payload, ok := event.Payload.(failure); ok {
				run.FailedAt = payload.stage
				run.LastError = payload.err
			}
		}).
		State("not_started").
		On(EventPreProcessed).Target("pre_processed").
		On(EventFail).Target("failed").Done().
		State("pre_processed").
		On(EventCoreApplied).Target("core_applied").
		On(EventFail).Target("failed").Done().
		State("core_applied").
		On(EventPostProcessed).Target("post_processed").
		On(EventFail).Target("failed").Done().
		State("post_processed").
		On(EventFinish).Target("done").Done().
		State("done").
		On(EventReset).Target("not_started").Done().
		State("failed").
		OnEntry("recordFailure").
		On(EventReset).Target("not_started").Done().
		Build()

	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}

type failure struct {
	stage Stage
	err   error
}

// runChain drives one chain through its stages and returns the final state.
// The first failing stage stops the chain and is returned as a StageError.
func (d *Dispatcher) runChain(ctx context.Context, run runInfo, chain Chain, steps chainSteps) (State, error) {
	state := &chainContext{Chain: chain}
	interp, err := buildChainMachine(state)
	if err != nil {
		return StateNotStarted, fmt.Errorf("build %s chain: %w", chain, err)
	}
	interp.Start()
	defer interp.Stop()

	logger := d.logger.With(
		ports.F("run_id", run.id),
		ports.F("device", run.device),
		ports.F("chain", string(chain)),
	)

	stages := []struct {
		stage Stage
		fn    step
		event string
	}{
		{StagePre, steps.pre, EventPreProcessed},
		{StageCore, steps.core, EventCoreApplied},
		{StagePost, steps.post, EventPostProcessed},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return d.failChain(ctx, interp, logger, run, chain, s.stage, err)
		}
		if s.fn != nil {
			if err := s.fn(ctx); err != nil {
				return d.failChain(ctx, interp, logger, run, chain, s.stage, err)
			}
		}
		interp.Send(statekit.Event{Type: statekit.EventType(s.event)})
		logger.Debug(ctx, "chain stage completed", ports.F("stage", string(s.stage)), ports.F("state", string(interp.State().Value)))
	}

	interp.Send(statekit.Event{Type: EventFinish})
	return State(interp.State().Value), nil
}

func (d *Dispatcher) failChain(ctx context.Context, interp *statekit.Interpreter[chainContext], logger ports.Logger, run runInfo, chain Chain, stage Stage, cause error) (State, error) {
	interp.Send(statekit.Event{Type: EventFail, Payload: failure{stage: stage, err: cause}})
	logger.Error(ctx, "chain stage failed", ports.F("stage", string(stage)), ports.ErrorField(cause))
	return State(interp.State().Value), &StageError{
		RunID:  run.id,
		Device: run.device,
		Chain:  chain,
		Stage:  stage,
		Cause:  cause,
	}
}
