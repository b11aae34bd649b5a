// Package cli contains the command line interface for identstr.
//
// # Usage
//
// Without a command, identstr expands every ident_str! invocation in the
// given source files and writes the result to stdout:
//
//	identstr lib.rs
//	identstr -w src/*.rs
//	echo '#n = concat!("get_", "x") => fn #n() {}' | identstr -i
//
// # Commands
//
//   - expand: Expand invocations in source files (default)
//   - check: Report diagnostics as text, JSON or YAML
//   - tokens: Dump the token trees of a source file
//   - repl: Expand invocations interactively
//   - init: Write the current flag values to the configuration file
//
// # Configuration
//
// Flag defaults are read from a YAML file in the user configuration
// directory (~/.config/identstr/config.yaml). Nested mappings are flattened
// with '-', so both forms below set --log-level and --include-dir:
//
//	log:
//	  level: debug
//	include-dir:
//	  - ./include
//
//	log-level: debug
//
// A key prefixed with a command name applies only to that command, for
// example check-format. Directories in IDENTSTR_INCLUDE_PATH are searched
// after those given with --include-dir.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o identstr .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/identstr/pprof)
package cli
