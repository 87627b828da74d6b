// SPDX-License-Identifier: BSD-3-Clause

package kvmsrv

import (
	"context"

	"github.com/qmuntal/stateless"
)

// Lifecycle states for the device context (C7): the gadget and its HID
// pipes move through these states in strict order both on the way up
// and on the way down, enforcing the ordered-shutdown invariant (abort
// background tasks, drop device handles, then ConfigFS cleanup) as a
// single transition graph rather than ad hoc booleans.
const (
	stateUninitialized = "uninitialized"
	stateProvisioned   = "provisioned"
	stateBound         = "bound"
	stateRunning       = "running"
	stateDraining      = "draining"
	stateStopped       = "stopped"
)

const (
	triggerProvision = "provision"
	triggerBind      = "bind"
	triggerStart     = "start"
	triggerDrain     = "drain"
	triggerStop      = "stop"
)

// newLifecycle builds the service's lifecycle state machine: a gadget
// may only be bound after it is provisioned, may only run once bound,
// and draining is the sole path out of running back to stopped.
func newLifecycle() *stateless.StateMachine {
	sm := stateless.NewStateMachine(stateUninitialized)

	sm.Configure(stateUninitialized).Permit(triggerProvision, stateProvisioned)
	sm.Configure(stateProvisioned).Permit(triggerBind, stateBound)
	sm.Configure(stateBound).Permit(triggerStart, stateRunning)
	sm.Configure(stateRunning).Permit(triggerDrain, stateDraining)
	sm.Configure(stateDraining).Permit(triggerStop, stateStopped)
	// A provisioning failure can be torn down directly without ever
	// reaching "bound" or "running".
	sm.Configure(stateProvisioned).Permit(triggerDrain, stateDraining)
	sm.Configure(stateBound).Permit(triggerDrain, stateDraining)

	return sm
}

func fire(ctx context.Context, sm *stateless.StateMachine, trigger string) error {
	return sm.FireCtx(ctx, trigger)
}
