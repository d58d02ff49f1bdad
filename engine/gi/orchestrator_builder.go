package gi

// OrchestratorBuilderOption is a functional option for configuring an Orchestrator.
type OrchestratorBuilderOption func(*orchestrator)

// WithBakeProgress installs a progress callback forwarded to every baker the orchestrator creates.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - OrchestratorBuilderOption: option function to apply
func WithBakeProgress(fn ProgressFunc) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.progress = fn
	}
}

// WithBakeSeed replaces the kernel seed source of every baker the orchestrator creates.
//
// Parameters:
//   - fn: returns seeds in [0, 1)
//
// Returns:
//   - OrchestratorBuilderOption: option function to apply
func WithBakeSeed(fn SeedFunc) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.seed = fn
	}
}
