package recommend

import (
	"errors" // Sentinel errors

	"referral_system/internal/domain" // Importing domain models
)

var (
	// ErrTaskNotFound means the consent callback referenced an unknown task.
	ErrTaskNotFound = errors.New("recommendation task not found")
	// ErrConflict means a different terminal state was already recorded.
	ErrConflict = errors.New("task already handled with a different outcome")
	// ErrInvalidOutcome means the desired state is not a terminal state.
	ErrInvalidOutcome = errors.New("outcome must be accepted or declined")
)

// Decision is the result of evaluating a consent callback against the task's
// current state.
type Decision int

const (
	// DecisionApply records the terminal state (and bumps the aggregate on accept).
	DecisionApply Decision = iota
	// DecisionNoop is a replay of the same terminal state; nothing changes.
	DecisionNoop
)

// DecideConsent evaluates the consent state machine for one callback.
// pending and sent both admit either terminal state; terminal states admit only
// an idempotent replay of themselves.
func DecideConsent(current, desired domain.TaskStatus) (Decision, error) {
	if !desired.Terminal() {
		return 0, ErrInvalidOutcome
	}
	if current.Terminal() {
		if current == desired {
			return DecisionNoop, nil // Safe replay
		}
		return 0, ErrConflict // Never silently overwrite a recorded outcome
	}
	return DecisionApply, nil
}
