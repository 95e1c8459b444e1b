// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrManagerFailed is returned by every operation after a compile or
	// link failure has moved the Manager into its terminal state.
	ErrManagerFailed = errors.New("pipeline: manager is in failed state")

	// ErrInvalidProgram is returned when activating a program that is nil,
	// released, unlinked or owned by another Manager.
	ErrInvalidProgram = errors.New("pipeline: invalid program")

	// ErrNoKernel is wrapped by a CompileError when no kernel is registered
	// for the stage's entry point.
	ErrNoKernel = errors.New("pipeline: no kernel bound to entry point")
)

// CompileError reports a stage the backend rejected.
type CompileError struct {
	Kind StageKind
	// Log is the diagnostic text. It is never empty.
	Log string
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("pipeline: compile %s stage: %s", e.Kind, e.Log)
}

func (e *CompileError) Unwrap() error { return e.Err }

// LinkError reports a program that failed cross-stage validation.
type LinkError struct {
	// Log is the diagnostic text. It is never empty.
	Log string
}

func (e *LinkError) Error() string {
	return "pipeline: link program: " + e.Log
}
