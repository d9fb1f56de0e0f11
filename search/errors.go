package search

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccelerator is returned when no compute adapter can be obtained.
	ErrNoAccelerator = errors.New("gen4ids: no accelerator available")

	// ErrDeviceCreation is returned when the adapter rejects the device request.
	ErrDeviceCreation = errors.New("gen4ids: device creation failed")

	// ErrBufferAllocation is returned when a device buffer cannot be created.
	ErrBufferAllocation = errors.New("gen4ids: buffer allocation failed")

	// ErrDispatch is returned when the kernel cannot be compiled, bound or submitted.
	ErrDispatch = errors.New("gen4ids: dispatch failed")

	// ErrMap is returned when the staging buffer cannot be mapped for reading.
	ErrMap = errors.New("gen4ids: buffer map failed")

	// ErrKernel is returned when the kernel source cannot be loaded.
	ErrKernel = errors.New("gen4ids: invalid kernel")

	// ErrUnknownBackend is returned by Open for unregistered backend names.
	ErrUnknownBackend = errors.New("gen4ids: unknown backend")
)

// Error is a terminal pipeline failure. State is the last state reached
// before the failure.
type Error struct {
	State State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("search failure (%s): %v", e.State, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FailedAt returns the state in which err aborted the pipeline.
func FailedAt(err error) (State, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.State, true
	}
	return StateIdle, false
}
