package model

import "time"

// DueFilter narrows a todo list by due date
type DueFilter string

const (
	DueAll   DueFilter = "all"
	DueToday DueFilter = "today"
	DueIn5   DueFilter = "5"
	DueIn10  DueFilter = "10"
	DueIn30  DueFilter = "30"
)

// DueFilters lists filters in the order they cycle
var DueFilters = []DueFilter{DueAll, DueToday, DueIn5, DueIn10, DueIn30}

// Label returns a display label
func (f DueFilter) Label() string {
	switch f {
	case DueToday:
		return "Today"
	case DueIn5:
		return "Next 5 days"
	case DueIn10:
		return "Next 10 days"
	case DueIn30:
		return "Next 30 days"
	default:
		return "All"
	}
}

// Next cycles to the following filter
func (f DueFilter) Next() DueFilter {
	for i, known := range DueFilters {
		if f == known {
			return DueFilters[(i+1)%len(DueFilters)]
		}
	}
	return DueAll
}

func (f DueFilter) days() int {
	switch f {
	case DueIn5:
		return 5
	case DueIn10:
		return 10
	case DueIn30:
		return 30
	}
	return 0
}

// Matches reports whether t passes the filter as of now. Day filters keep
// everything due on or before now+N days, overdue items included. Todos
// without a parseable date only pass DueAll.
func (f DueFilter) Matches(t Todo, now time.Time) bool {
	if f == DueAll || f == "" {
		return true
	}
	due, ok := t.Date()
	if !ok {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if f == DueToday {
		return due.Equal(today)
	}
	return !due.After(today.AddDate(0, 0, f.days()))
}

// Apply returns the todos that pass the filter
func (f DueFilter) Apply(todos []Todo, now time.Time) []Todo {
	if f == DueAll || f == "" {
		return todos
	}
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if f.Matches(t, now) {
			out = append(out, t)
		}
	}
	return out
}
