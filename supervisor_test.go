package lod

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vawter.tech/stopper"
)

func closeSupervisor(t *testing.T, s *Supervisor) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventually)
		defer cancel()
		_ = s.Close(ctx)
	})
}

func TestSupervisorReportsExitOnce(t *testing.T) {
	runner := NewFakeRunner()
	mb := NewMailbox()
	s := NewSupervisor(runner, mb, WithSupervisorLogger(discardLogger()))
	closeSupervisor(t, s)

	sess, err := s.Spawn("caffeinate", "-i")
	require.NoError(t, err)
	assert.Equal(t, "caffeinate", sess.Program)

	child := runner.Child(sess.PID)
	require.NotNil(t, child)
	assert.Equal(t, 0, mb.Len(), "nothing is reported while the child runs")

	child.Exit(errors.New("exit status 3"))
	select {
	case <-sess.Done():
	case <-time.After(eventually):
		t.Fatal("waiter did not observe the exit")
	}

	require.Eventually(t, func() bool { return mb.Len() == 1 }, eventually, tick)

	h := &recordingHandler{}
	NewLoop(mb, h).Tick(context.Background())
	require.Len(t, h.msgs, 1)
	assert.Equal(t, ClearCaffeinationMessage(sess.ID), h.msgs[0])

	// A second Exit is a no-op and nothing else is reported
	child.Exit(nil)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, mb.Len())
}

func TestSupervisorSessionsHaveDistinctIDs(t *testing.T) {
	runner := NewFakeRunner()
	s := NewSupervisor(runner, NewMailbox(), WithSupervisorLogger(discardLogger()))
	closeSupervisor(t, s)

	a, err := s.Spawn("caffeinate")
	require.NoError(t, err)
	b, err := s.Spawn("caffeinate")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.PID, b.PID)

	runner.Child(a.PID).Exit(nil)
	runner.Child(b.PID).Exit(nil)
}

func TestSupervisorSpawnFailure(t *testing.T) {
	runner := NewFakeRunner()
	runner.OnStart("caffeinate", func(*FakeChild, []string) error {
		return errors.New("no such file")
	})
	s := NewSupervisor(runner, NewMailbox(), WithSupervisorLogger(discardLogger()))
	closeSupervisor(t, s)

	_, err := s.Spawn("caffeinate")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, "caffeinate: no such file", err.Error())
}

func TestSessionKill(t *testing.T) {
	t.Run("default kill program", func(t *testing.T) {
		runner := NewFakeRunner()
		s := NewSupervisor(runner, NewMailbox(), WithSupervisorLogger(discardLogger()))
		closeSupervisor(t, s)

		sess, err := s.Spawn("caffeinate")
		require.NoError(t, err)
		require.NoError(t, sess.Kill(context.Background()))

		select {
		case <-sess.Done():
		case <-time.After(eventually):
			t.Fatal("killed child was never reaped")
		}

		// Killing a reaped child reports the kill program's failure
		err = sess.Kill(context.Background())
		require.ErrorIs(t, err, ErrUnexpectedStatusCode)
		var perr *ProgramError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, string(perr.Output.Stderr), "No such process")
	})

	t.Run("custom kill program", func(t *testing.T) {
		runner := NewFakeRunner()
		s := NewSupervisor(runner, NewMailbox(),
			WithSupervisorLogger(discardLogger()),
			WithKillProgram("/bin/kill"),
		)
		closeSupervisor(t, s)

		sess, err := s.Spawn("caffeinate")
		require.NoError(t, err)
		require.NoError(t, sess.Kill(context.Background()))

		calls := runner.CallsTo("/bin/kill")
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"-9", "1001"}, calls[0].Args)

		runner.Child(sess.PID).Exit(nil)
	})
}

func TestSupervisorRefusesWorkAfterClose(t *testing.T) {
	s := NewSupervisor(NewFakeRunner(), NewMailbox(), WithSupervisorLogger(discardLogger()))
	require.NoError(t, s.Close(context.Background()))

	_, err := s.Spawn("caffeinate")
	assert.ErrorIs(t, err, ErrSupervisorStopped)
	assert.False(t, s.Go(func(context.Context) {}))

	// Close is safe to repeat
	require.NoError(t, s.Close(context.Background()))
}

func TestSupervisorGo(t *testing.T) {
	s := NewSupervisor(NewFakeRunner(), NewMailbox(), WithSupervisorLogger(discardLogger()))

	ran := make(chan struct{})
	require.True(t, s.Go(func(context.Context) { close(ran) }))

	select {
	case <-ran:
	case <-time.After(eventually):
		t.Fatal("task did not run")
	}
	require.NoError(t, s.Close(context.Background()))
}

func TestSupervisorCloseHonoursContext(t *testing.T) {
	runner := NewFakeRunner()
	s := NewSupervisor(runner, NewMailbox(),
		WithSupervisorLogger(discardLogger()),
		WithStopGrace(time.Millisecond),
	)

	sess, err := s.Spawn("caffeinate")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Close(ctx), context.DeadlineExceeded)

	// Once the child is gone the waiter drains and Close succeeds
	runner.Child(sess.PID).Exit(nil)
	ctx2, cancel2 := context.WithTimeout(context.Background(), eventually)
	defer cancel2()
	assert.NoError(t, s.Close(ctx2))
}

func TestSupervisorCancelsTasksAfterGrace(t *testing.T) {
	s := NewSupervisor(NewFakeRunner(), NewMailbox(),
		WithSupervisorLogger(discardLogger()),
		WithStopGrace(20*time.Millisecond),
	)

	started := make(chan struct{})
	cancelled := make(chan error, 1)
	release := make(chan struct{})
	require.True(t, s.Go(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		cancelled <- ctx.Err()
		<-release
	}))
	<-started

	// The task has seen its cancellation but not returned yet, so Close
	// keeps waiting for it
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Close(ctx), context.DeadlineExceeded)

	select {
	case err := <-cancelled:
		assert.Error(t, err)
	case <-time.After(eventually):
		t.Fatal("task context was not cancelled after the grace period")
	}

	close(release)
	ctx2, cancel2 := context.WithTimeout(context.Background(), eventually)
	defer cancel2()
	assert.NoError(t, s.Close(ctx2))
}

func TestSupervisorLetsTasksFinishWithinGrace(t *testing.T) {
	s := NewSupervisor(NewFakeRunner(), NewMailbox(),
		WithSupervisorLogger(discardLogger()),
		WithStopGrace(time.Minute),
	)

	release := make(chan struct{})
	var ctxErr error
	require.True(t, s.Go(func(ctx context.Context) {
		<-release
		ctxErr = ctx.Err()
	}))

	closed := make(chan error, 1)
	go func() { closed <- s.Close(context.Background()) }()

	select {
	case <-closed:
		t.Fatal("Close returned while a task was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(eventually):
		t.Fatal("Close did not return after the task finished")
	}
	assert.NoError(t, ctxErr, "a task finishing within the grace period is not cancelled")
}

func TestSupervisorRefusesWorkWhenParentStopped(t *testing.T) {
	parent := stopper.WithContext(context.Background())
	parent.Stop(0)

	runner := NewFakeRunner()
	s := NewSupervisor(runner, NewMailbox(),
		WithSupervisorLogger(discardLogger()),
		WithSupervisorContext(parent),
	)
	closeSupervisor(t, s)

	_, err := s.Spawn("caffeinate")
	assert.ErrorIs(t, err, ErrSupervisorStopped)
	assert.False(t, s.Go(func(context.Context) {}))

	// A child started before the refusal must not be left behind
	starts := 0
	for _, call := range runner.Calls() {
		if call.Start {
			starts++
		}
	}
	for pid := 1001; pid <= 1000+starts; pid++ {
		child := runner.Child(pid)
		require.NotNil(t, child)
		assert.True(t, child.Exited(), "pid %d still running", pid)
	}
}

func TestSupervisorDropsClearAfterQuit(t *testing.T) {
	runner := NewFakeRunner()
	mb := NewMailbox()
	logs := &lockedBuffer{}
	s := NewSupervisor(runner, mb, WithSupervisorLogger(log.New(logs, "", 0)))
	closeSupervisor(t, s)

	sess, err := s.Spawn("caffeinate")
	require.NoError(t, err)

	mb.Send(QuitMessage())
	require.True(t, NewLoop(mb, &recordingHandler{}).Tick(context.Background()))

	runner.Child(sess.PID).Exit(nil)
	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "clear message dropped")
	}, eventually, tick)
	assert.Equal(t, 0, mb.Len())
}
