// Package task defines the task model plus the filtering, sorting, and
// statistics operations the menus are built from.
package task

// Priority levels. Lower is more urgent.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// Task is one tracked item belonging to a user. Deadline is an ISO date
// string (YYYY-MM-DD); that format orders correctly under plain string
// comparison, which the deadline filters and sorts rely on.
type Task struct {
	ID          int64
	Username    string
	Title       string
	Description string
	Priority    int
	Deadline    string
	Category    string
	Completed   bool
}

// PriorityLabel renders a priority level for display.
func PriorityLabel(p int) string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// ValidPriority reports whether p is one of the three defined levels.
func ValidPriority(p int) bool {
	return p >= PriorityHigh && p <= PriorityLow
}
