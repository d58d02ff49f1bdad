package gi

import "errors"

var (
	// ErrNotReady is reported when a Baker is asked to work before its capture targets exist or after Dispose.
	// Bake methods log it and return nil.
	ErrNotReady = errors.New("gi: baker is not ready")

	// ErrUnsavedScene aborts a bake whose results would have nowhere to be persisted.
	ErrUnsavedScene = errors.New("gi: scene has not been saved")

	// ErrBakeInProgress is returned when a bake is started while another one is active.
	ErrBakeInProgress = errors.New("gi: a bake is already in progress")

	// ErrClosed is returned by asynchronous bakes started after Close.
	ErrClosed = errors.New("gi: orchestrator is closed")

	// ErrOverrideActive is returned by MaterialOverrideScope.Apply when an override has not been restored yet.
	ErrOverrideActive = errors.New("gi: material override already active")
)
