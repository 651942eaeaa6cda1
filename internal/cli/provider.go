package cli

import (
	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/ui"
)

var _ apperrors.ColorProvider = CLIColorProvider{}

// CLIColorProvider supplies the active theme's codes to apperrors.
type CLIColorProvider struct{}

func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
