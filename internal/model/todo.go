package model

import (
	"math"
	"time"
)

// Priority represents the urgency of a todo
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityModerate Priority = "moderate"
	PriorityExtreme  Priority = "extreme"
)

// Priorities lists the priorities in ascending order
var Priorities = []Priority{PriorityLow, PriorityModerate, PriorityExtreme}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Next cycles to the following priority, wrapping around
func (p Priority) Next() Priority {
	for i, known := range Priorities {
		if p == known {
			return Priorities[(i+1)%len(Priorities)]
		}
	}
	return PriorityModerate
}

// DateLayout is the wire format of todo_date
const DateLayout = "2006-01-02"

// Todo represents a todo item as returned by the API
type Todo struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	IsCompleted bool     `json:"is_completed"`
	Position    int      `json:"position"`
	TodoDate    string   `json:"todo_date"` // YYYY-MM-DD
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// StatusIcon returns the icon for the completion state
func (t Todo) StatusIcon() string {
	if t.IsCompleted {
		return "✓"
	}
	return "○"
}

// PriorityIcon returns the icon for the priority
func (t Todo) PriorityIcon() string {
	switch t.Priority {
	case PriorityExtreme:
		return "▲"
	case PriorityModerate:
		return "■"
	case PriorityLow:
		return "▽"
	default:
		return "·"
	}
}

// Date parses TodoDate. ok is false when it is missing or malformed.
func (t Todo) Date() (time.Time, bool) {
	d, err := time.Parse(DateLayout, t.TodoDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// TodoPage is one page of the todo list endpoint
type TodoPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Todo  `json:"results"`
}

// TodoInput is the body for creating a todo
type TodoInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	TodoDate    string   `json:"todo_date"`
	IsCompleted *bool    `json:"is_completed,omitempty"`
	Position    *int     `json:"position,omitempty"`
}

// TodoPatch is the body for a partial todo update. Nil fields are not sent.
type TodoPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	TodoDate    *string   `json:"todo_date,omitempty"`
	IsCompleted *bool     `json:"is_completed,omitempty"`
	Position    *int      `json:"position,omitempty"`
}

// TotalPages returns how many pages hold count items at perPage each.
// Always at least 1.
func TotalPages(count, perPage int) int {
	if perPage <= 0 || count <= 0 {
		return 1
	}
	return int(math.Ceil(float64(count) / float64(perPage)))
}

// Summary is the dashboard overview of the first page of todos
type Summary struct {
	Total     int    // Server-side count across all pages
	Completed int    // Completed items on the page
	Upcoming  []Todo // First incomplete items, at most 5
}

// Summarize builds the dashboard overview
func Summarize(page *TodoPage) Summary {
	if page == nil {
		return Summary{}
	}
	s := Summary{Total: page.Count}
	for _, t := range page.Results {
		if t.IsCompleted {
			s.Completed++
			continue
		}
		if len(s.Upcoming) < 5 {
			s.Upcoming = append(s.Upcoming, t)
		}
	}
	return s
}
