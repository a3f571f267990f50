// Package tracker implements the task operations. Every call is one
// load, mutate, save cycle against the store; nothing is cached between calls.
package tracker

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/task-tracker/internal/model"
)

// Store persists the whole collection.
type Store interface {
	Load() (*model.Collection, error)
	Save(c *model.Collection) error
}

// Tracker applies operations to the collection held by a Store.
type Tracker struct {
	store  Store
	now    func() time.Time
	logger *log.Logger
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger used for operation events.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

func New(store Store, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	t := &Tracker{
		store:  store,
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Add appends a Todo task and returns it. Title validation is left to the
// caller.
func (t *Tracker) Add(title string, description *string) (model.Task, error) {
	c, err := t.store.Load()
	if err != nil {
		return model.Task{}, err
	}
	task, err := c.Append(title, description, t.now())
	if err != nil {
		return model.Task{}, err
	}
	if err := t.store.Save(c); err != nil {
		return model.Task{}, err
	}
	t.logger.Debug("task added", "id", task.ID)
	return task, nil
}

// DeleteResult describes a successful delete.
type DeleteResult struct {
	Task model.Task
	// CounterReset is true when the collection became empty and ids restart at 1.
	CounterReset bool
}

// Delete removes the task with id. On NotFound nothing is written.
func (t *Tracker) Delete(id int) (DeleteResult, error) {
	c, err := t.store.Load()
	if err != nil {
		return DeleteResult{}, err
	}
	removed, ok := c.Remove(id)
	if !ok {
		return DeleteResult{}, &NotFoundError{ID: id}
	}
	if err := t.store.Save(c); err != nil {
		return DeleteResult{}, err
	}
	reset := len(c.Tasks) == 0
	t.logger.Debug("task deleted", "id", id, "counter_reset", reset)
	return DeleteResult{Task: removed, CounterReset: reset}, nil
}

// Update replaces the title when title is non-nil. The description is
// ALWAYS overwritten with the given value: passing nil clears it. Callers
// that want to keep the current description must pass it back in.
func (t *Tracker) Update(id int, title *string, description *string) (model.Task, error) {
	return t.mutate(id, "task updated", func(task *model.Task) {
		if title != nil {
			task.Title = *title
		}
		task.Description = description
	})
}

// SetStatus moves a task to status. Every transition is allowed.
func (t *Tracker) SetStatus(id int, status model.Status) (model.Task, error) {
	return t.mutate(id, "status changed", func(task *model.Task) {
		task.Status = status
	})
}

func (t *Tracker) MarkInProgress(id int) (model.Task, error) {
	return t.SetStatus(id, model.StatusInProgress)
}

func (t *Tracker) MarkDone(id int) (model.Task, error) {
	return t.SetStatus(id, model.StatusDone)
}

func (t *Tracker) mutate(id int, event string, apply func(*model.Task)) (model.Task, error) {
	c, err := t.store.Load()
	if err != nil {
		return model.Task{}, err
	}
	task := c.Find(id)
	if task == nil {
		return model.Task{}, &NotFoundError{ID: id}
	}
	apply(task)
	task.Touch(t.now())
	if err := t.store.Save(c); err != nil {
		return model.Task{}, err
	}
	t.logger.Debug(event, "id", id, "status", task.Status)
	return *task, nil
}

// List returns tasks in collection order, restricted to status when non-nil.
func (t *Tracker) List(status *model.Status) ([]model.Task, error) {
	c, err := t.store.Load()
	if err != nil {
		return nil, err
	}
	return slices.Collect(c.Filter(status)), nil
}

// Get returns a single task.
func (t *Tracker) Get(id int) (model.Task, error) {
	c, err := t.store.Load()
	if err != nil {
		return model.Task{}, err
	}
	task := c.Find(id)
	if task == nil {
		return model.Task{}, &NotFoundError{ID: id}
	}
	return *task, nil
}
