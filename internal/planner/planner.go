// Package planner holds the brain-dump and weekly-plan records the
// app surfaces. The upstream product ships with placeholder data; the
// store is seeded the same way until real capture ingestion lands.
package planner

import "sync"

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusDraft     Status = "Draft"
	StatusCompleted Status = "Completed"
)

// Task is a planned item derived from a capture.
type Task struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Priority Priority `json:"priority"`
	DueDate  string   `json:"due_date,omitempty"`
	Details  string   `json:"details,omitempty"`
}

// Capture is a raw brain-dump entry awaiting planning.
type Capture struct {
	ID      int    `json:"id"`
	Status  Status `json:"status"`
	Time    string `json:"time"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
}

// Store serves tasks and captures. Read-mostly; the seed is fixed at
// construction.
type Store struct {
	mu       sync.RWMutex
	tasks    []Task
	captures []Capture
}

func NewStore() *Store {
	return &Store{
		tasks:    seedTasks(),
		captures: seedCaptures(),
	}
}

func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Captures() []Capture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Capture, len(s.captures))
	copy(out, s.captures)
	return out
}

func seedTasks() []Task {
	return []Task{
		{
			ID:       1,
			Title:    "Fill IRCC form",
			Category: "Admin",
			Priority: PriorityHigh,
			DueDate:  "Due by Tuesday",
		},
		{
			ID:       2,
			Title:    "Buy groceries",
			Category: "Home",
			Priority: PriorityMedium,
			Details:  "Milk and bread",
		},
		{
			ID:       3,
			Title:    "Office work",
			Category: "Work",
			Priority: PriorityMedium,
			Details:  "08:00 to 12:00 block",
		},
	}
}

func seedCaptures() []Capture {
	return []Capture{
		{
			ID:      1,
			Status:  StatusScheduled,
			Time:    "08:00 AM",
			Title:   "Office work",
			Preview: "Deep-work block before lunch",
		},
		{
			ID:      2,
			Status:  StatusDraft,
			Time:    "12:00 PM",
			Title:   "Lunch Break",
			Preview: "Step away from the desk",
		},
		{
			ID:      3,
			Status:  StatusCompleted,
			Time:    "01:00 PM",
			Title:   "Fill IRCC form",
			Preview: "Submitted before the deadline",
		},
	}
}
