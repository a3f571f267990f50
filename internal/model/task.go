package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"math"
	"time"
)

// ErrIDsExhausted is returned by Append when no id is left to hand out.
var ErrIDsExhausted = errors.New("task ids exhausted")

// Status is a task's position in its lifecycle. Any status may move to any
// other; there is no terminal state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// legacyInProgress is what an older serializer wrote for StatusInProgress.
const legacyInProgress = "inprogress"

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// ParseStatus maps a status literal (as typed on the command line or stored
// on disk) to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case string(StatusTodo):
		return StatusTodo, nil
	case string(StatusInProgress), legacyInProgress:
		return StatusInProgress, nil
	case string(StatusDone):
		return StatusDone, nil
	}
	return "", fmt.Errorf("unknown status %q (want todo, in-progress or done)", s)
}

// ParseFilter is ParseStatus restricted to the canonical literals accepted
// on the command line.
func ParseFilter(s string) (Status, error) {
	if s == legacyInProgress {
		return "", fmt.Errorf("unknown status %q (want todo, in-progress or done)", s)
	}
	return ParseStatus(s)
}

// Label is the human-readable name used in headers and tables.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "Todo"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Task is a single unit of work. ID and CreatedAt never change after
// creation; UpdatedAt is refreshed by every mutation.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask builds a Todo task stamped with now (normalized to UTC).
func NewTask(id int, title string, description *string, now time.Time) Task {
	now = now.UTC()
	return Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch refreshes UpdatedAt, keeping it strictly later than its previous value.
func (t *Task) Touch(now time.Time) {
	now = now.UTC()
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	t.UpdatedAt = now
}

// UnmarshalJSON normalizes both timestamps to UTC whatever offset they were
// stored with.
func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = Task(p)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return nil
}

// DescriptionText returns the description or "" when there is none.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// Collection is the whole persisted state: tasks in insertion order plus the
// next id to hand out.
type Collection struct {
	Tasks  []Task `json:"tasks"`
	NextID int    `json:"next_id"`
}

// NewCollection returns an empty collection whose first id will be 1.
func NewCollection() *Collection {
	return &Collection{Tasks: []Task{}, NextID: 1}
}

// Append adds a new Todo task under the next id and advances the counter.
// The collection is left unchanged when the counter cannot advance.
func (c *Collection) Append(title string, description *string, now time.Time) (Task, error) {
	if c.NextID >= math.MaxInt {
		return Task{}, ErrIDsExhausted
	}
	t := NewTask(c.NextID, title, description, now)
	c.Tasks = append(c.Tasks, t)
	c.NextID++
	return t, nil
}

// Find returns a pointer into Tasks for id, or nil.
func (c *Collection) Find(id int) *Task {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return &c.Tasks[i]
		}
	}
	return nil
}

// Remove deletes the task with id, keeping the order of the rest. When the
// collection becomes empty the id counter restarts at 1.
func (c *Collection) Remove(id int) (Task, bool) {
	for i := range c.Tasks {
		if c.Tasks[i].ID != id {
			continue
		}
		removed := c.Tasks[i]
		c.Tasks = append(c.Tasks[:i], c.Tasks[i+1:]...)
		if len(c.Tasks) == 0 {
			c.NextID = 1
		}
		return removed, true
	}
	return Task{}, false
}

// Filter yields tasks matching status in collection order. A nil status
// yields every task.
func (c *Collection) Filter(status *Status) iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, t := range c.Tasks {
			if status != nil && t.Status != *status {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// MaxID is the largest id present, or 0 when empty.
func (c *Collection) MaxID() int {
	highest := 0
	for _, t := range c.Tasks {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest
}
