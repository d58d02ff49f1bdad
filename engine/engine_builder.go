package engine

import (
	"github.com/Carmen-Shannon/oxy-gi/config"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the bake configuration. Defaults to config.Default().
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithDevice makes the engine bake on an existing device instead of creating a renderer.
// The engine does not release an injected device.
//
// Parameters:
//   - device: the device
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDevice(device gi.Device) EngineBuilderOption {
	return func(e *engine) {
		e.device = device
	}
}

// WithProgress installs a callback receiving bake progress.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProgress(fn gi.ProgressFunc) EngineBuilderOption {
	return func(e *engine) {
		e.progress = fn
	}
}
