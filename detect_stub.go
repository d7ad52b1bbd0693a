//go:build !darwin

package lod

import (
	"context"
)

// DetectMode is not supported on this platform
func DetectMode(ctx context.Context, runner Runner) (Mode, error) {
	return ModeDesktop, ErrDetectUnsupported
}
