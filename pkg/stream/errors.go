package stream

import (
	"errors"
	"fmt"
)

// PluginName identifies errors raised by this module's stages.
const PluginName = "lintstream"

// PluginError wraps a failure raised while a stage handled an item or
// flushed at end of stream.
type PluginError struct {
	Plugin string
	Stage  string
	Err    error
}

func (e *PluginError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("%s: %v", e.Plugin, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Plugin, e.Stage, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// Wrap tags err with the plugin identity and stage name. Errors that are
// already plugin errors are returned unchanged.
func Wrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PluginError
	if errors.As(err, &pe) {
		return err
	}
	return &PluginError{Plugin: PluginName, Stage: stage, Err: err}
}

// PanicError is a recovered panic from a stage handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return "panic: " + err.Error()
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
