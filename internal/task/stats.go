package task

import "sort"

// CategoryCount pairs a category with how many tasks it holds.
type CategoryCount struct {
	Category string
	Count    int
}

// Stats aggregates one task list.
type Stats struct {
	Total          int
	Completed      int
	Pending        int
	Overdue        int
	CompletionRate float64
	Categories     map[string]int
	TopCategories  []CategoryCount
}

// Summarize computes statistics over a task list. The today argument is an
// ISO date string used for the overdue count.
func Summarize(tasks []Task, today string) Stats {
	s := Stats{
		Total:      len(tasks),
		Completed:  len(Completed(tasks)),
		Pending:    len(Pending(tasks)),
		Overdue:    len(Overdue(tasks, today)),
		Categories: categoryCounts(tasks),
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}
	s.TopCategories = topCategories(s.Categories, 3)
	return s
}

func categoryCounts(tasks []Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		category := t.Category
		if category == "" {
			category = "Uncategorized"
		}
		counts[category]++
	}
	return counts
}

// topCategories returns the n most used categories, ties broken by name so
// the ordering is stable across runs.
func topCategories(counts map[string]int, n int) []CategoryCount {
	ranked := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		ranked = append(ranked, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Category < ranked[j].Category
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
