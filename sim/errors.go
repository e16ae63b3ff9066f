package sim

import "errors"

var (
	// ErrPrecondition marks a workflow operation invoked in a state that forbids it,
	// e.g. starting the next event while the patient is still being seen.
	ErrPrecondition = errors.New("workflow precondition violated")

	// ErrUnknownWorkflowState marks a visit whose latest event has no successor in the
	// transition table.
	ErrUnknownWorkflowState = errors.New("unrecognized workflow state")

	// ErrInvalidEntity marks an entity rejected at construction.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidConfig marks a configuration rejected before startup.
	ErrInvalidConfig = errors.New("invalid configuration")
)
