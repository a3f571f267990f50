package tracker

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("task not found")
	ErrStoreNil = errors.New("task store is nil")
)

// NotFoundError reports an operation that targeted an absent id.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Task with ID %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
