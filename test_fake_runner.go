package lod

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// FakeRunner is an in-memory Runner for tests. Output returns scripted
// results per program name and Start hands out FakeChild processes that run
// until they are told to exit. The default kill program is understood: it
// terminates the FakeChild with the given pid.
type FakeRunner struct {
	mu       sync.Mutex
	nextPID  int
	outputs  map[string]OutputFunc
	starts   map[string]StartFunc
	children map[int]*FakeChild
	calls    []Call
}

// Call records one Output or Start invocation
type Call struct {
	// Name is the program name
	Name string
	// Args are the program arguments
	Args []string
	// Start is true for Start, false for Output
	Start bool
}

// OutputFunc produces the scripted result of an Output call
type OutputFunc func(args []string) (Result, error)

// StartFunc is called for each Start. Returning an error fails the spawn;
// calling child.Exit makes the child terminate immediately.
type StartFunc func(child *FakeChild, args []string) error

var _ Runner = (*FakeRunner)(nil)

// NewFakeRunner creates a FakeRunner whose programs all succeed silently
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		nextPID:  1000,
		outputs:  make(map[string]OutputFunc),
		starts:   make(map[string]StartFunc),
		children: make(map[int]*FakeChild),
	}
}

// OnOutput scripts the result of running name
func (f *FakeRunner) OnOutput(name string, fn OutputFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[name] = fn
}

// OnStart scripts what happens when name is spawned
func (f *FakeRunner) OnStart(name string, fn StartFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts[name] = fn
}

// Output implements Runner
func (f *FakeRunner) Output(ctx context.Context, name string, args ...string) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	fn := f.outputs[name]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if fn != nil {
		return fn(args)
	}
	if name == DefaultKillProgram {
		return f.kill(args), nil
	}
	return Result{}, nil
}

// kill emulates `kill -9 <pid>` against the fake process table
func (f *FakeRunner) kill(args []string) Result {
	if len(args) != 2 || args[0] != "-9" {
		return Result{ExitCode: 2, Stderr: []byte("usage: kill -9 pid\n")}
	}
	pid, err := strconv.Atoi(args[1])
	if err != nil {
		return Result{ExitCode: 2, Stderr: []byte(fmt.Sprintf("kill: invalid pid %q\n", args[1]))}
	}

	child := f.Child(pid)
	if child == nil || child.Exited() {
		return Result{ExitCode: 1, Stderr: []byte(fmt.Sprintf("kill: (%d) - No such process\n", pid))}
	}
	child.Exit(fmt.Errorf("signal: killed"))
	return Result{}
}

// Start implements Runner
func (f *FakeRunner) Start(name string, args ...string) (Child, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...), Start: true})
	fn := f.starts[name]
	f.nextPID++
	child := &FakeChild{pid: f.nextPID, done: make(chan struct{})}
	f.mu.Unlock()

	if fn != nil {
		if err := fn(child, args); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	f.children[child.pid] = child
	f.mu.Unlock()

	return child, nil
}

// Calls returns every recorded invocation in order
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded invocations of name
func (f *FakeRunner) CallsTo(name string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []Call
	for _, c := range f.calls {
		if c.Name == name {
			calls = append(calls, c)
		}
	}
	return calls
}

// Child returns the spawned child with pid, or nil
func (f *FakeRunner) Child(pid int) *FakeChild {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.children[pid]
}

// FakeChild is a process handed out by FakeRunner.Start
type FakeChild struct {
	pid  int
	done chan struct{}
	once sync.Once
	err  error
}

// Pid implements Child
func (c *FakeChild) Pid() int {
	return c.pid
}

// Wait implements Child
func (c *FakeChild) Wait() error {
	<-c.done
	return c.err
}

// Exit terminates the child with the given wait error. Only the first call
// has any effect.
func (c *FakeChild) Exit(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Exited reports whether the child has terminated
func (c *FakeChild) Exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
