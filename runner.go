package lod

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// NoExitCode is reported in Result.ExitCode when the operating system could
// not resolve an exit code, e.g. because the process was killed by a signal
const NoExitCode = -1

// Result is the raw outcome of running a program to completion
type Result struct {
	// ExitCode is the exit status, or NoExitCode
	ExitCode int
	// Stdout is everything the program wrote to standard output
	Stdout []byte
	// Stderr is everything the program wrote to standard error
	Stderr []byte
}

// Child is a spawned program that has not been waited on yet
type Child interface {
	// Pid returns the operating system process id
	Pid() int
	// Wait blocks until the process exits and releases its resources
	Wait() error
}

// Runner is the capability to run external programs. ExecRunner is backed by
// real processes; FakeRunner returns scripted results for tests.
type Runner interface {
	// Output runs the program, blocks until it exits and captures its output.
	// A non-zero exit is not an error here; errors mean the program could not
	// be spawned or its output could not be read.
	Output(ctx context.Context, name string, args ...string) (Result, error)

	// Start spawns the program and returns without waiting for it
	Start(name string, args ...string) (Child, error)
}

// ExecRunner runs programs with os/exec. Program names are resolved through
// PATH like any other executable lookup and arguments are passed unmodified.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Output implements Runner
func (ExecRunner) Output(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, err
		}
	}

	return Result{
		// ExitCode is -1 when the process was terminated by a signal
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

// Start implements Runner. The child's standard streams are connected to
// the null device.
func (ExecRunner) Start(name string, args ...string) (Child, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execChild{cmd: cmd}, nil
}

type execChild struct {
	cmd *exec.Cmd
}

func (c *execChild) Pid() int {
	return c.cmd.Process.Pid
}

func (c *execChild) Wait() error {
	return c.cmd.Wait()
}
