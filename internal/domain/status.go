package domain

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"     // Created, not started
	StatusInProgress Status = "in_progress" // Being worked on
	StatusInReview   Status = "in_review"   // Work done, awaiting review
	StatusCompleted  Status = "completed"   // Finished
	StatusBlocked    Status = "blocked"     // Waiting on something external
	StatusCancelled  Status = "cancelled"   // Abandoned
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusInReview,
		StatusCompleted,
		StatusBlocked,
		StatusCancelled,
	}
}

// transitions defines the allowed status transitions.
// Flow: pending → in_progress → in_review → completed
//
//	blocked and cancelled are reachable from every non-terminal status.
//	completed and cancelled have no outgoing edges.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusBlocked, StatusCancelled},
	StatusInProgress: {StatusInReview, StatusBlocked, StatusCancelled},
	StatusInReview:   {StatusCompleted, StatusBlocked, StatusCancelled},
	StatusBlocked:    {StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// Next returns the next status on the main path and whether one exists.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusInReview, true
	case StatusInReview:
		return StatusCompleted, true
	default:
		return "", false
	}
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusInReview:
		return "In Review"
	case StatusCompleted:
		return "Completed"
	case StatusBlocked:
		return "Blocked"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// ParseStatus converts a user supplied string into a Status.
func ParseStatus(str string) (Status, error) {
	s := Status(str)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
