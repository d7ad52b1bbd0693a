//go:build darwin

package lod

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectModeReadsDockAutohide(t *testing.T) {
	runner := NewFakeRunner()
	runner.OnOutput("defaults", scripted(Result{Stdout: []byte("1\n")}, nil))

	mode, err := DetectMode(context.Background(), runner)
	require.NoError(t, err)
	assert.Equal(t, ModeLaptop, mode)

	calls := runner.CallsTo("defaults")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"read", "com.apple.dock", "autohide"}, calls[0].Args)
}

func TestDetectModeMissingPreference(t *testing.T) {
	runner := NewFakeRunner()
	runner.OnOutput("defaults", scripted(Result{ExitCode: 1, Stderr: []byte("does not exist")}, nil))

	mode, err := DetectMode(context.Background(), runner)
	assert.ErrorIs(t, err, ErrUnexpectedStatusCode)
	assert.Equal(t, ModeDesktop, mode)
}
