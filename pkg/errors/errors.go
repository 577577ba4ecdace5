// Unified error handling for filament swap
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	"fmt"
	"runtime"

	pkgerrors "github.com/pkg/errors"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Configuration errors
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Timeline errors
	ErrTimelineParse ErrorCode = "TIMELINE_PARSE"
	ErrTimelineItem  ErrorCode = "TIMELINE_ITEM"
	ErrTimelineOrder ErrorCode = "TIMELINE_ORDER"

	// Swap errors
	ErrSwapIndex  ErrorCode = "SWAP_INDEX"
	ErrSwapVector ErrorCode = "SWAP_VECTOR"
	ErrSwapMatrix ErrorCode = "SWAP_MATRIX"

	// Project errors
	ErrProjectIO   ErrorCode = "PROJECT_IO"
	ErrProjectLock ErrorCode = "PROJECT_LOCK"

	// Runtime errors
	ErrRuntime ErrorCode = "RUNTIME"
)

// HostError is the unified error type
type HostError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Section is the config section or context
	Section string

	// Option is the config option name (if applicable)
	Option string

	// Err wraps the underlying error
	Err error

	// Context provides additional context
	Context map[string]interface{}
}

// Error implements the error interface
func (e *HostError) Error() string {
	ctx := e.Section
	if e.Option != "" {
		ctx = e.Option
	}
	msg := fmt.Sprintf("[%s:%s] %s", e.Code, ctx, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *HostError) Unwrap() error {
	return e.Err
}

// SetSection sets the context section
func (e *HostError) SetSection(section string) *HostError {
	e.Section = section
	return e
}

// SetOption sets the config option
func (e *HostError) SetOption(option string) *HostError {
	e.Option = option
	return e
}

// SetContext adds additional context
func (e *HostError) SetContext(key string, value interface{}) *HostError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Wrap wraps an existing error with additional context. The wrapped error
// carries a stack trace.
func Wrap(err error, code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
		Err:     pkgerrors.WithStack(err),
	}
}

// New creates a new HostError
func New(code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
	}
}

// Config errors

// ConfigValidationError wraps a print config option that could not be used
func ConfigValidationError(section, option string, err error) *HostError {
	return Wrap(err, ErrConfigValidation, "invalid print config").
		SetSection(section).
		SetOption(option)
}

// Timeline errors

// TimelineParseError creates an error for an unreadable custom G-code timeline
func TimelineParseError(err error) *HostError {
	return Wrap(err, ErrTimelineParse, "failed to parse custom G-code timeline")
}

// TimelineItemError creates an error for an invalid timeline item
func TimelineItemError(pos int, reason string) *HostError {
	return New(ErrTimelineItem, fmt.Sprintf("item %d: %s", pos, reason)).
		SetContext("position", pos)
}

// TimelineOrderError creates an error for items out of height order
func TimelineOrderError(pos int, prev, cur float64) *HostError {
	return New(ErrTimelineOrder, fmt.Sprintf("item %d at z=%.3f is below previous item at z=%.3f", pos, cur, prev)).
		SetContext("position", pos)
}

// Swap errors

// SwapIndexError creates an error for a slot outside the extruder range
func SwapIndexError(index, count int) *HostError {
	return New(ErrSwapIndex, fmt.Sprintf("extruder index %d out of range [0, %d)", index, count)).
		SetContext("index", index).
		SetContext("count", count)
}

// SwapVectorError creates an error for a per-extruder vector of the wrong length
func SwapVectorError(option string, length, want int) *HostError {
	return New(ErrSwapVector, fmt.Sprintf("per-extruder option has %d values, want %d", length, want)).
		SetOption(option)
}

// SwapMatrixError creates an error for a wipe matrix that does not match the extruder count
func SwapMatrixError(reason string) *HostError {
	return New(ErrSwapMatrix, reason).SetOption("wiping_volumes_matrix")
}

// Project errors

// ProjectIOError wraps a failed project read or write
func ProjectIOError(path string, err error) *HostError {
	return Wrap(err, ErrProjectIO, fmt.Sprintf("project file %s", path)).
		SetContext("path", path)
}

// ProjectLockError wraps a failure to take the project lock
func ProjectLockError(path string, err error) *HostError {
	return Wrap(err, ErrProjectLock, fmt.Sprintf("unable to lock %s", path)).
		SetContext("path", path)
}

// RuntimeError creates a general runtime error
func RuntimeError(message string) *HostError {
	return New(ErrRuntime, message)
}

// RecoverPanic converts a value returned by recover() to an error.
func RecoverPanic(r interface{}) *HostError {
	if r == nil {
		return nil
	}
	switch x := r.(type) {
	case runtime.Error:
		return RuntimeError(x.Error())
	case error:
		return RuntimeError(x.Error())
	case string:
		return RuntimeError(fmt.Sprintf("panic: %s", x))
	default:
		return RuntimeError(fmt.Sprintf("panic: %v", x))
	}
}

// Is checks if err, or any error it wraps, carries the given code
func Is(err error, code ErrorCode) bool {
	var hostErr *HostError
	if pkgerrors.As(err, &hostErr) {
		return hostErr.Code == code
	}
	return false
}

// IsConfig checks if error is a config error
func IsConfig(err error) bool {
	return Is(err, ErrConfigValidation)
}

// IsSwap checks if error is a rejected swap request
func IsSwap(err error) bool {
	return Is(err, ErrSwapIndex) ||
		Is(err, ErrSwapVector) ||
		Is(err, ErrSwapMatrix)
}
