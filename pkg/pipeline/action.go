package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// ActionMode is how an action reports completion.
type ActionMode int

const (
	// ActionSync actions return when done.
	ActionSync ActionMode = iota
	// ActionCallback actions call a completion callback, possibly from
	// another goroutine.
	ActionCallback
	// ActionReturning actions take a context and return when done.
	ActionReturning
)

func (m ActionMode) String() string {
	switch m {
	case ActionSync:
		return "sync"
	case ActionCallback:
		return "callback"
	case ActionReturning:
		return "returning"
	default:
		return fmt.Sprintf("ActionMode(%d)", int(m))
	}
}

// Action is a caller-supplied function run by Result and Results.
type Action[T any] struct {
	mode      ActionMode
	sync      func(T) error
	callback  func(T, func(error))
	returning func(context.Context, T) error
}

// Sync wraps a function that returns when it is done.
func Sync[T any](fn func(T) error) Action[T] {
	return Action[T]{mode: ActionSync, sync: fn}
}

// Callback wraps a function that signals completion by calling done.
func Callback[T any](fn func(v T, done func(error))) Action[T] {
	return Action[T]{mode: ActionCallback, callback: fn}
}

// Returning wraps a context-aware function.
func Returning[T any](fn func(context.Context, T) error) Action[T] {
	return Action[T]{mode: ActionReturning, returning: fn}
}

// Mode returns the calling convention.
func (a Action[T]) Mode() ActionMode {
	return a.mode
}

func (a Action[T]) validate() error {
	var ok bool
	switch a.mode {
	case ActionSync:
		ok = a.sync != nil
	case ActionCallback:
		ok = a.callback != nil
	case ActionReturning:
		ok = a.returning != nil
	}
	if !ok {
		return fmt.Errorf("%w: expected a %s action function", ErrInvalidArgument, a.mode)
	}
	return nil
}

func (a Action[T]) call(ctx context.Context, v T) error {
	switch a.mode {
	case ActionCallback:
		done := make(chan error, 1)
		var once sync.Once
		a.callback(v, func(err error) {
			once.Do(func() { done <- err })
		})
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	case ActionReturning:
		return a.returning(ctx, v)
	default:
		return a.sync(v)
	}
}
