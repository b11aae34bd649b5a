package profile

import "slices"

// Tag is the build tag that enables profiling.
const Tag = `pprof`

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unsupported mode disables
	// profiling.
	Mode string

	// Dir is the output directory. Empty selects a temporary directory.
	Dir string

	// Quiet suppresses the profiler's own log messages.
	Quiet bool
}

// Enabled reports whether Start would start a profiler.
func (p Profiler) Enabled() bool {
	return p.Mode != "" && slices.Contains(Modes(), p.Mode)
}

// Start begins profiling. Both Start and the returned Stopper are safe to
// call when profiling is disabled.
func (p Profiler) Start() Stopper {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
