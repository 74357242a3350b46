package task

import (
	"sort"
	"strings"
)

// Completed returns the tasks marked done.
func Completed(tasks []Task) []Task {
	return filter(tasks, func(t Task) bool { return t.Completed })
}

// Pending returns the tasks not yet done.
func Pending(tasks []Task) []Task {
	return filter(tasks, func(t Task) bool { return !t.Completed })
}

// Overdue returns pending tasks whose deadline is before today, where
// today is an ISO date string.
func Overdue(tasks []Task, today string) []Task {
	return filter(tasks, func(t Task) bool {
		return !t.Completed && t.Deadline != "" && t.Deadline < today
	})
}

// ByPriority returns tasks at the given priority level.
func ByPriority(tasks []Task, priority int) []Task {
	return filter(tasks, func(t Task) bool { return t.Priority == priority })
}

// ByCategory returns tasks in the given category, compared case-insensitively.
func ByCategory(tasks []Task, category string) []Task {
	return filter(tasks, func(t Task) bool { return strings.EqualFold(t.Category, category) })
}

// ByDeadlineRange returns tasks whose deadline falls within [from, to],
// both ISO date strings inclusive.
func ByDeadlineRange(tasks []Task, from, to string) []Task {
	return filter(tasks, func(t Task) bool {
		return t.Deadline >= from && t.Deadline <= to
	})
}

// SortByPriority orders tasks most urgent first. The input is not modified.
func SortByPriority(tasks []Task) []Task {
	out := append([]Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// SortByDeadline orders tasks earliest deadline first. The input is not
// modified.
func SortByDeadline(tasks []Task) []Task {
	out := append([]Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Deadline < out[j].Deadline })
	return out
}

func filter(tasks []Task, keep func(Task) bool) []Task {
	var out []Task
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
