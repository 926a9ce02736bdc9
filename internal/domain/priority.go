package domain

// Priority represents how urgent a task is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// AllPriorities returns all valid priorities, lowest first.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// ParsePriority converts a user supplied string into a Priority.
func ParsePriority(str string) (Priority, error) {
	p := Priority(str)
	if !p.IsValid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}
