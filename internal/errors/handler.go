package apperrors

import (
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the terminal escape codes used by HandleRenderError.
// It lets this package print themed output without importing the ui package.
type ColorProvider interface {
	Yellow() string
	Reset() string
}

// DefaultColorProvider emits no escape codes.
type DefaultColorProvider struct{}

func (d DefaultColorProvider) Yellow() string { return "" }
func (d DefaultColorProvider) Reset() string  { return "" }

// HandleRenderError prints a status line describing why a render failed and
// returns the matching exit code. A nil err prints nothing.
//
// Parameters:
//   - err: The render error.
//   - duration: Time spent before the failure; omitted from the message if zero.
//   - out: Destination of the status line.
//   - colors: Escape codes for highlighting, or nil for plain text.
//
// Returns:
//   - int: The exit code, as computed by ExitCode.
func HandleRenderError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	code := ExitCode(err)
	if code == ExitSuccess {
		return code
	}
	if colors == nil {
		colors = DefaultColorProvider{}
	}

	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). The render deadline was reached%s.\n", suffix)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), suffix, colors.Reset())
	case ExitErrorConfig:
		fmt.Fprintf(out, "Status: Rejected. The render request is invalid: %v\n", err)
	default:
		fmt.Fprintf(out, "Status: Failure. The render did not complete: %v\n", err)
	}
	return code
}
