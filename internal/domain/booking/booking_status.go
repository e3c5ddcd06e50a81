package booking

import "fmt"

// Status is the state of a rider's booking attempt.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConfirming Status = "confirming"
	StatusLoading    Status = "loading"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// validTransitions defines the booking flow state machine. Reset to idle on
// logout or teardown is not a transition and bypasses this table.
var validTransitions = map[Status][]Status{
	StatusIdle:       {StatusConfirming},
	StatusConfirming: {StatusLoading, StatusIdle},
	StatusLoading:    {StatusSuccess, StatusError},
	StatusSuccess:    {StatusIdle},
	StatusError:      {StatusLoading, StatusIdle},
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsSettled returns true for the outcomes shown during the display window.
func (s Status) IsSettled() bool {
	return s == StatusSuccess || s == StatusError
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
