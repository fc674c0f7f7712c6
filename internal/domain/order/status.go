package order

import "fmt"

// Status is the order lifecycle state. The literal values are shared between
// the admin UI and the order records.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates a raw status string against the closed enumeration.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

// IsTerminal reports whether the status ends the order lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// InvalidTransitionError indicates a status change rejected by a guarded
// transition policy.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// TransitionPolicy decides whether a status change is permitted. The default
// policy permits everything, matching how operators actually use the status
// dropdown: any status can be forced for corrections. A guarded policy is
// available for deployments that want the forward-only lifecycle.
type TransitionPolicy interface {
	Allow(from, to Status) error
}

// AllowAnyTransition permits every status change, including no-ops.
type AllowAnyTransition struct{}

func (AllowAnyTransition) Allow(Status, Status) error { return nil }

// GuardedTransitions enforces PENDING -> PAID -> SHIPPED -> COMPLETED, with
// CANCELLED reachable from any non-terminal state. Setting the current status
// again is always permitted (idempotent no-op).
type GuardedTransitions struct{}

var forward = map[Status]Status{
	StatusPending: StatusPaid,
	StatusPaid:    StatusShipped,
	StatusShipped: StatusCompleted,
}

func (GuardedTransitions) Allow(from, to Status) error {
	if from == to {
		return nil
	}
	if to == StatusCancelled {
		if from.IsTerminal() {
			return &InvalidTransitionError{From: from, To: to}
		}
		return nil
	}
	if forward[from] == to {
		return nil
	}
	return &InvalidTransitionError{From: from, To: to}
}
