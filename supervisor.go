package lod

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"vawter.tech/stopper"
)

// Supervisor spawns caffeination children and reaps them in the background.
// Each spawned child gets one waiter goroutine whose only job is to wait for
// that child and then report its exit by sending a ClearCaffeination message
// tagged with the Session ID.
//
// The Supervisor also runs fire-and-forget work on behalf of AppState so that
// Close can drain everything in one place.
type Supervisor struct {
	runner  Runner
	mailbox *Mailbox
	logger  *log.Logger

	// KillProgram is the program used to deliver SIGKILL
	KillProgram string

	// StopGrace is how long Close lets tasks finish before cancelling them
	StopGrace time.Duration

	parent context.Context
	tasks  *stopper.Context

	// mu orders task registration against Close so wg never grows while
	// Close is waiting on it
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// SupervisorOption configures a Supervisor
type SupervisorOption func(*Supervisor)

// WithSupervisorLogger sets the logger used for child lifecycle events
func WithSupervisorLogger(l *log.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.logger = l
	}
}

// WithKillProgram sets the program used to deliver SIGKILL
func WithKillProgram(name string) SupervisorOption {
	return func(s *Supervisor) {
		s.KillProgram = name
	}
}

// WithStopGrace sets the grace period given to tasks on Close. Zero never
// cancels them.
func WithStopGrace(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.StopGrace = d
	}
}

// WithSupervisorContext ties the task group to ctx: once ctx is stopped or
// cancelled the supervisor refuses new work
func WithSupervisorContext(ctx context.Context) SupervisorOption {
	return func(s *Supervisor) {
		s.parent = ctx
	}
}

// NewSupervisor creates a Supervisor that reports child exits to mailbox
func NewSupervisor(runner Runner, mailbox *Mailbox, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		runner:      runner,
		mailbox:     mailbox,
		logger:      log.Default(),
		KillProgram: DefaultKillProgram,
		StopGrace:   DefaultStopGrace,
		parent:      context.Background(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.tasks = stopper.WithContext(s.parent)

	return s
}

// Session is a handle to one live caffeination child. It only knows the
// child's pid; the waiter owns the child itself.
type Session struct {
	// ID tags the ClearCaffeination message sent when the child exits
	ID uuid.UUID
	// PID is the operating system process id of the child
	PID int
	// Program is the name the child was started with
	Program string

	supervisor *Supervisor
	done       chan struct{}
}

// Done returns a channel that is closed once the waiter has observed the
// child's exit
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Kill sends SIGKILL to the child through the kill program. It does not
// clear any state; the waiter reports the exit once the child is gone.
func (s *Session) Kill(ctx context.Context) error {
	args := []string{"-9", strconv.Itoa(s.PID)}
	_, err := NewProgram(s.supervisor.runner, s.supervisor.KillProgram, args).Execute(ctx)
	return err
}

// Spawn starts the program and returns as soon as it is running. The
// returned Session is reported back through the mailbox exactly once, when
// the child exits by any means.
func (s *Supervisor) Spawn(name string, args ...string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stoppingLocked() {
		return nil, ErrSupervisorStopped
	}

	child, err := s.runner.Start(name, args...)
	if err != nil {
		return nil, &ProgramError{Program: name, Kind: ErrIO, Err: err}
	}

	sess := &Session{
		ID:         uuid.New(),
		PID:        child.Pid(),
		Program:    name,
		supervisor: s,
		done:       make(chan struct{}),
	}

	s.wg.Add(1)
	accepted := s.tasks.Go(func(_ *stopper.Context) error {
		defer s.wg.Done()

		// The child has to be waited on or it lingers as a zombie
		err := child.Wait()
		close(sess.done)
		if err != nil {
			s.logger.Printf("caffeination %s (pid %d) exited: %v", sess.ID, sess.PID, err)
		} else {
			s.logger.Printf("caffeination %s (pid %d) exited", sess.ID, sess.PID)
		}

		if !s.mailbox.Send(ClearCaffeinationMessage(sess.ID)) {
			s.logger.Printf("caffeination %s: mailbox closed, clear message dropped", sess.ID)
		}
		return nil
	})
	if !accepted {
		// Stopped between the check and the spawn: nobody would reap the
		// child, so take it down here
		s.wg.Done()
		if err := sess.Kill(context.Background()); err != nil {
			s.logger.Printf("caffeination %s (pid %d): kill after refused spawn: %s", sess.ID, sess.PID, describe(err))
		}
		go func() {
			_ = child.Wait()
			close(sess.done)
		}()
		return nil, ErrSupervisorStopped
	}

	return sess, nil
}

// Go runs fn in the background. The ctx handed to fn is cancelled once Close
// has waited StopGrace for it. Go returns false if the supervisor is stopping
// and fn was not started.
func (s *Supervisor) Go(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stoppingLocked() {
		return false
	}

	s.wg.Add(1)
	accepted := s.tasks.Go(func(sctx *stopper.Context) error {
		defer s.wg.Done()
		fn(sctx)
		return nil
	})
	if !accepted {
		s.wg.Done()
	}
	return accepted
}

// Close stops accepting work, gives running tasks StopGrace to finish and
// then cancels their context. It waits for every task until ctx expires.
// Waiters only finish once their child has exited, so live sessions should be
// killed first.
func (s *Supervisor) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.tasks.Stop(s.StopGrace)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) stoppingLocked() bool {
	return s.closed || s.tasks.IsStopping()
}
