// SPDX-License-Identifier: BSD-3-Clause

package kvmsrv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleHappyPath(t *testing.T) {
	sm := newLifecycle()
	ctx := context.Background()

	for _, step := range []struct {
		trigger string
		want    string
	}{
		{triggerProvision, stateProvisioned},
		{triggerBind, stateBound},
		{triggerStart, stateRunning},
		{triggerDrain, stateDraining},
		{triggerStop, stateStopped},
	} {
		assert.NoError(t, fire(ctx, sm, step.trigger))
		state, err := sm.State(ctx)
		assert.NoError(t, err)
		assert.Equal(t, step.want, state)
	}
}

func TestLifecycleDrainFromProvisionedOnBindFailure(t *testing.T) {
	sm := newLifecycle()
	ctx := context.Background()

	assert.NoError(t, fire(ctx, sm, triggerProvision))
	// Binding never succeeds; tear down straight from provisioned.
	assert.NoError(t, fire(ctx, sm, triggerDrain))
	state, err := sm.State(ctx)
	assert.NoError(t, err)
	assert.Equal(t, stateDraining, state)
}

func TestLifecycleDrainFromBoundOnStartFailure(t *testing.T) {
	sm := newLifecycle()
	ctx := context.Background()

	assert.NoError(t, fire(ctx, sm, triggerProvision))
	assert.NoError(t, fire(ctx, sm, triggerBind))
	assert.NoError(t, fire(ctx, sm, triggerDrain))
	state, err := sm.State(ctx)
	assert.NoError(t, err)
	assert.Equal(t, stateDraining, state)
}

func TestLifecycleRejectsOutOfOrderTransitions(t *testing.T) {
	sm := newLifecycle()
	ctx := context.Background()

	// Cannot bind before provisioning.
	assert.Error(t, fire(ctx, sm, triggerBind))
	// Cannot start before binding.
	assert.Error(t, fire(ctx, sm, triggerStart))
	// Cannot stop from uninitialized.
	assert.Error(t, fire(ctx, sm, triggerStop))

	state, err := sm.State(ctx)
	assert.NoError(t, err)
	assert.Equal(t, stateUninitialized, state, "a rejected trigger must not move the state")
}

func TestLifecycleCannotDrainTwice(t *testing.T) {
	sm := newLifecycle()
	ctx := context.Background()

	assert.NoError(t, fire(ctx, sm, triggerProvision))
	assert.NoError(t, fire(ctx, sm, triggerBind))
	assert.NoError(t, fire(ctx, sm, triggerStart))
	assert.NoError(t, fire(ctx, sm, triggerDrain))
	assert.Error(t, fire(ctx, sm, triggerDrain), "draining has no self-loop")
}
