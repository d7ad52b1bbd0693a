//go:build darwin

package lod

import (
	"context"
)

// DetectMode derives the current mode from the Dock autohide preference.
// A hidden Dock means laptop mode.
func DetectMode(ctx context.Context, runner Runner) (Mode, error) {
	args := []string{"read", "com.apple.dock", "autohide"}
	out, err := NewProgram(runner, "defaults", args).Execute(ctx)
	if err != nil {
		return ModeDesktop, err
	}
	return parseAutohide(out.Stdout)
}
