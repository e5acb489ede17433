package sched

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyInitialized = errors.New("scheduler already initialized")
	ErrNotInitialized     = errors.New("scheduler not initialized")
	ErrInvalidQuantum     = errors.New("quantum must be positive")
	ErrInvalidDeviceCount = errors.New("device count out of range")
	ErrNilHandler         = errors.New("nil task handler")
	ErrInvalidPriority    = errors.New("priority out of range")
	ErrInvalidDevice      = errors.New("no such device")
)

// InvariantError is the panic value used when the host misuses the
// scheduler (for example Exec with no running task) or when the scheduler
// state is found inconsistent. It is never returned as an error.
type InvariantError struct {
	Op  string // operation that detected the violation
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("sched: %s: %s", e.Op, e.Msg)
}

func fatalf(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
