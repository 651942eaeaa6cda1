// Command mbcalc renders the Mandelbrot set with a fixed-point engine of
// arbitrary precision, compares it with the floating-point tiers, and serves
// the same computations over HTTP.
package main

import (
	"context"
	"os"

	"github.com/agbru/mbcalc/internal/app"
	apperrors "github.com/agbru/mbcalc/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
