package lod

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
)

// Settings is the read-only view of the configuration the core needs.
// Config implements it.
type Settings interface {
	// ScriptPath returns the side-effect script to run on entering mode
	ScriptPath(mode Mode) string
	// ScriptRunner returns the program used to run side-effect scripts
	ScriptRunner() string
	// Caffeination returns the caffeination program and its optional single
	// argument. ok is false when no program is configured.
	Caffeination() (program, arg string, ok bool)
	// Cleanup removes any temporary artifacts
	Cleanup() error
}

// Presentation is what the menu needs to render after a transition
type Presentation struct {
	// Mode is the current mode
	Mode Mode
	// Current describes the current mode
	Current ModeInfo
	// Next describes the mode a toggle would switch to
	Next ModeInfo
	// Caffeinated reports whether a caffeination session is live
	Caffeinated bool
}

// AppState is the only owner of mode and caffeination state. It must only
// be used from the goroutine that drives the Loop; other goroutines send
// Messages instead.
type AppState struct {
	mode       Mode
	session    *Session
	settings   Settings
	runner     Runner
	supervisor *Supervisor
	logger     *log.Logger

	supervisorOpts []SupervisorOption
}

// StateOption configures an AppState
type StateOption func(*AppState)

// WithRunner sets the Runner used for scripts, spawns and kills
func WithRunner(r Runner) StateOption {
	return func(a *AppState) {
		a.runner = r
	}
}

// WithLogger sets the logger used for failed side effects
func WithLogger(l *log.Logger) StateOption {
	return func(a *AppState) {
		a.logger = l
	}
}

// WithSupervisorOptions passes options through to the Supervisor
func WithSupervisorOptions(opts ...SupervisorOption) StateOption {
	return func(a *AppState) {
		a.supervisorOpts = append(a.supervisorOpts, opts...)
	}
}

// NewAppState creates the state machine in the given initial mode. Child
// exits are reported through mailbox.
func NewAppState(mode Mode, settings Settings, mailbox *Mailbox, opts ...StateOption) *AppState {
	a := &AppState{
		mode:     mode,
		settings: settings,
		runner:   ExecRunner{},
		logger:   log.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	supervisorOpts := append([]SupervisorOption{WithSupervisorLogger(a.logger)}, a.supervisorOpts...)
	a.supervisor = NewSupervisor(a.runner, mailbox, supervisorOpts...)

	return a
}

// Mode returns the current mode
func (a *AppState) Mode() Mode {
	return a.mode
}

// Caffeinated reports whether a caffeination session is live
func (a *AppState) Caffeinated() bool {
	return a.session != nil
}

// Session returns the live caffeination session, or nil
func (a *AppState) Session() *Session {
	return a.session
}

// Presentation returns the data the menu renders
func (a *AppState) Presentation() Presentation {
	return Presentation{
		Mode:        a.mode,
		Current:     a.mode.Info(),
		Next:        a.mode.Toggle().Info(),
		Caffeinated: a.session != nil,
	}
}

// Handle applies one message. Failures of external actions are logged and
// leave the previous state in place. MsgQuit is interpreted by the Loop and
// ignored here.
func (a *AppState) Handle(ctx context.Context, msg Message) {
	switch msg.Kind {
	case MsgToggleMode:
		a.toggleMode()
	case MsgToggleCaffeination:
		a.toggleCaffeination(ctx)
	case MsgClearCaffeination:
		a.clearCaffeination(msg.Session)
	default:
		a.logger.Printf("ignoring message %s", msg)
	}
}

func (a *AppState) toggleMode() {
	next := a.mode.Toggle()
	a.runScript(next)
	a.mode = next
}

// runScript fires the side-effect script for mode without waiting for it
func (a *AppState) runScript(mode Mode) {
	path := a.settings.ScriptPath(mode)
	if path == "" {
		a.logger.Printf("no %s script configured", mode)
		return
	}

	program := NewProgram(a.runner, a.settings.ScriptRunner(), []string{path})
	// The script outlives the Handle call; the supervisor's task context
	// kills it if it is still running when Shutdown's grace period ends
	started := a.supervisor.Go(func(ctx context.Context) {
		if _, err := program.Execute(ctx); err != nil {
			a.logger.Printf("%s script failed: %s", mode, describe(err))
		}
	})
	if !started {
		a.logger.Printf("%s script not run: %v", mode, ErrSupervisorStopped)
	}
}

func (a *AppState) toggleCaffeination(ctx context.Context) {
	if a.session != nil {
		// The waiter clears the session once the child is really gone
		if err := a.session.Kill(ctx); err != nil {
			a.logger.Printf("failed to kill caffeination %s: %s", a.session.ID, describe(err))
		}
		return
	}

	program, arg, ok := a.settings.Caffeination()
	if !ok {
		a.logger.Printf("caffeinate_app is not configured")
		return
	}

	var args []string
	if arg != "" {
		args = []string{arg}
	}

	sess, err := a.supervisor.Spawn(program, args...)
	if err != nil {
		a.logger.Printf("failed to start caffeination: %s", describe(err))
		return
	}

	a.logger.Printf("caffeination %s started (pid %d)", sess.ID, sess.PID)
	a.session = sess
}

func (a *AppState) clearCaffeination(id uuid.UUID) {
	if a.session == nil {
		return
	}
	if id != uuid.Nil && id != a.session.ID {
		a.logger.Printf("ignoring stale clear for caffeination %s", id)
		return
	}
	a.session = nil
}

// Shutdown kills any live session, stops background work and removes
// temporary artifacts. It is called by the host after the Loop saw Quit.
func (a *AppState) Shutdown(ctx context.Context) error {
	merr := &MultiError{}

	if a.session != nil {
		merr.Add(a.session.Kill(ctx))
		a.session = nil
	}

	merr.Add(a.supervisor.Close(ctx))
	merr.Add(a.settings.Cleanup())

	return merr.Err()
}

// describe prefers the detailed rendering of program errors
func describe(err error) string {
	var perr *ProgramError
	if errors.As(err, &perr) {
		return perr.Detail()
	}
	return err.Error()
}
