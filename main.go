package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/identstr/cli"
	"github.com/ardnew/identstr/log"
	"github.com/ardnew/identstr/pkg"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		// Diagnostics have already been reported.
		if !errors.Is(err, pkg.ErrDiagnostics) {
			log.Error(
				"run failed",
				slog.Any("error", err),
			) // slog automatically uses LogValue()
		}

		os.Exit(1)
	}
}
