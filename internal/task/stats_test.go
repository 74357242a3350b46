package task

import (
	"reflect"
	"testing"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, "2026-01-01")
	if s.Total != 0 || s.CompletionRate != 0 {
		t.Fatalf("unexpected stats for empty list: %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	tasks := []Task{
		{Priority: PriorityHigh, Deadline: "2026-01-10", Category: "Work"},
		{Priority: PriorityLow, Deadline: "2026-01-05", Category: "Work", Completed: true},
		{Priority: PriorityMedium, Deadline: "2025-12-01", Category: "Home"},
		{Priority: PriorityLow, Deadline: "2026-02-01", Category: ""},
	}

	s := Summarize(tasks, "2026-01-01")
	if s.Total != 4 || s.Completed != 1 || s.Pending != 3 || s.Overdue != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.CompletionRate != 25.0 {
		t.Fatalf("expected 25%% completion, got %v", s.CompletionRate)
	}
	if s.Categories["Work"] != 2 || s.Categories["Home"] != 1 || s.Categories["Uncategorized"] != 1 {
		t.Fatalf("unexpected categories: %v", s.Categories)
	}

	want := []CategoryCount{
		{Category: "Work", Count: 2},
		{Category: "Home", Count: 1},
		{Category: "Uncategorized", Count: 1},
	}
	if !reflect.DeepEqual(s.TopCategories, want) {
		t.Fatalf("unexpected top categories: %v", s.TopCategories)
	}
}
