// Package cmd provides the identstr subcommands: expand, check, tokens, repl
// and init.
//
// Commands receive everything they share through their [context.Context]:
// the parsed [kong.Context] ([WithContext]), the expansion options built from
// the global flags ([WithOptions]) and the standard streams ([WithIO]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
