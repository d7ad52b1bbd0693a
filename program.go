package lod

import (
	"context"
)

// Output is the captured result of a program that exited with the expected
// status code. It is produced once per Execute and never modified.
type Output struct {
	// StatusCode is the exit status reported by the operating system
	StatusCode int
	// Stdout is the captured standard output
	Stdout []byte
	// Stderr is the captured standard error
	Stderr []byte
}

// Program is an external program invocation with an expected exit status
type Program struct {
	// Runner performs the actual spawn and capture
	Runner Runner
	// Name is the program to run, resolved through PATH
	Name string
	// Args are passed to the program unmodified
	Args []string
	// ExpectedStatusCode is the exit status that counts as success
	ExpectedStatusCode int
}

// ProgramOption configures a Program
type ProgramOption func(*Program)

// WithExpectedStatusCode sets the exit status that counts as success
func WithExpectedStatusCode(code int) ProgramOption {
	return func(p *Program) {
		p.ExpectedStatusCode = code
	}
}

// NewProgram creates a Program that expects exit status 0
func NewProgram(runner Runner, name string, args []string, opts ...ProgramOption) *Program {
	p := &Program{
		Runner: runner,
		Name:   name,
		Args:   args,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Execute runs the program to completion and validates its exit status.
// It never retries. On failure the returned error is a *ProgramError whose
// Kind is ErrIO, ErrNoStatusCode or ErrUnexpectedStatusCode.
func (p *Program) Execute(ctx context.Context) (Output, error) {
	res, err := p.Runner.Output(ctx, p.Name, p.Args...)
	if err != nil {
		return Output{}, &ProgramError{Program: p.Name, Kind: ErrIO, Err: err}
	}

	if res.ExitCode < 0 {
		return Output{}, &ProgramError{Program: p.Name, Kind: ErrNoStatusCode}
	}

	out := Output{
		StatusCode: res.ExitCode,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
	}

	if out.StatusCode != p.ExpectedStatusCode {
		return Output{}, &ProgramError{Program: p.Name, Kind: ErrUnexpectedStatusCode, Output: &out}
	}

	return out, nil
}
