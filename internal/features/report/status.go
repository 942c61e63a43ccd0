package report

import "fmt"

// Status is the lifecycle state of a custom report
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Outcome is the result of a lifecycle step applied to a report
type Outcome string

const (
	// OutcomeReset re-enters pending ahead of a regeneration attempt
	OutcomeReset Outcome = "reset"
	// OutcomeSucceeded completes a pending generation
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed fails a pending generation
	OutcomeFailed Outcome = "failed"
)

// Transition is the pure state machine: pending -> {completed, failed},
// with reset re-entering pending from any state. It has no persistence
// dependency so the machine is testable on its own.
func Transition(current Status, outcome Outcome) (Status, error) {
	switch outcome {
	case OutcomeReset:
		return StatusPending, nil
	case OutcomeSucceeded:
		if current != StatusPending {
			return current, fmt.Errorf("cannot complete report in status %q", current)
		}
		return StatusCompleted, nil
	case OutcomeFailed:
		if current != StatusPending {
			return current, fmt.Errorf("cannot fail report in status %q", current)
		}
		return StatusFailed, nil
	default:
		return current, fmt.Errorf("unknown outcome %q", outcome)
	}
}
