package lang

import (
	"os"

	"github.com/ardnew/identstr/log"
	"github.com/ardnew/identstr/token"
)

// Option configures an expansion.
type Option func(*options)

type options struct {
	logger        log.Logger
	grammar       token.Grammar
	getenv        func(string) (string, bool)
	readFile      func(string) ([]byte, error)
	includeDirs   []string
	compileErrors bool
}

func makeOptions(opts ...Option) options {
	o := options{
		grammar:  token.Rust,
		getenv:   defaultGetenv,
		readFile: defaultReadFile,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func (o options) evaluator() *Evaluator {
	return &Evaluator{
		Getenv:      o.getenv,
		ReadFile:    o.readFile,
		IncludeDirs: o.includeDirs,
		logger:      o.logger,
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithGrammar sets the identifier grammar synthesized identifiers must
// satisfy. The default is [token.Rust].
func WithGrammar(g token.Grammar) Option {
	return func(o *options) {
		if g != nil {
			o.grammar = g
		}
	}
}

// WithGetenv sets the environment lookup used by env!.
// The default is [os.LookupEnv].
func WithGetenv(getenv func(string) (string, bool)) Option {
	return func(o *options) {
		if getenv != nil {
			o.getenv = getenv
		}
	}
}

// WithEnv makes env! read variables from a list of "KEY=VALUE" strings
// instead of the process environment.
func WithEnv(env []string) Option {
	vars := make(map[string]string, len(env))

	for _, kv := range env {
		k, v, ok := cutEnv(kv)
		if ok {
			vars[k] = v
		}
	}

	return WithGetenv(func(name string) (string, bool) {
		v, ok := vars[name]

		return v, ok
	})
}

// WithReadFile sets the file reader used by include! and include_str!.
// The default is [os.ReadFile].
func WithReadFile(readFile func(string) ([]byte, error)) Option {
	return func(o *options) {
		if readFile != nil {
			o.readFile = readFile
		}
	}
}

// WithIncludeDirs appends directories to the include search path.
func WithIncludeDirs(dirs ...string) Option {
	return func(o *options) {
		o.includeDirs = append(o.includeDirs, dirs...)
	}
}

// WithCompileErrors makes source expansion emit diagnostics as
// compile_error! invocations in the output, after the expanded body.
func WithCompileErrors(enable bool) Option {
	return func(o *options) {
		o.compileErrors = enable
	}
}

func defaultGetenv(name string) (string, bool) { return os.LookupEnv(name) }

func defaultReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func cutEnv(kv string) (string, string, bool) {
	for i := 1; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}

	return "", "", false
}
