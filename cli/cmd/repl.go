package cmd

import (
	"context"

	"github.com/ardnew/identstr/cli/cmd/repl"
	"github.com/ardnew/identstr/log"
)

// Repl starts an interactive prompt that expands each line entered.
type Repl struct {
	NoHistory bool `help:"Do not load or save the input history."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	var cacheDir string

	if !r.NoHistory {
		if ktx := kongContextFrom(ctx); ktx != nil {
			cacheDir = ktx.Model.Vars()[CacheIdentifier]
		}
	}

	return repl.Run(ctx, cacheDir, log.Default(), optionsFrom(ctx)...)
}
