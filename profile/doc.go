// Package profile provides optional runtime profiling through
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof ./...
//	identstr --pprof-mode cpu --pprof-dir ./prof expand src/lib.rs
//	go tool pprof -http=: ./prof/cpu.pprof
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a Stopper
// that does nothing. The tagged build also registers the [net/http/pprof]
// handlers with [net/http.DefaultServeMux].
package profile
