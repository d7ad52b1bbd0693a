// Package lod is the core of a small utility that switches a workstation
// between two operating modes, laptop and desktop, and optionally keeps a
// caffeination helper process alive while the user wants the machine awake.
//
// All state lives in a single AppState that is only ever touched by the
// goroutine driving the Loop. Everything else talks to it by sending a
// Message into the shared Mailbox:
//
//	mailbox := lod.NewMailbox()
//	state := lod.NewAppState(lod.ModeDesktop, cfg, mailbox)
//	loop := lod.NewLoop(mailbox, state)
//
//	// From a menu callback, signal handler or any other goroutine
//	mailbox.Send(lod.ToggleModeMessage())
//
//	// From the host's own loop
//	if loop.Tick(ctx) {
//	    _ = state.Shutdown(ctx)
//	}
//
// # Running programs
//
// External programs are run through Program, which captures their output and
// checks the exit status against an expected code:
//
//	out, err := lod.NewProgram(lod.ExecRunner{}, "true", nil).Execute(ctx)
//	if errors.Is(err, lod.ErrUnexpectedStatusCode) {
//	    var perr *lod.ProgramError
//	    errors.As(err, &perr)
//	    log.Print(perr.Detail())
//	}
//
// The Runner behind a Program is an interface, so the state machine and the
// Supervisor can be exercised with FakeRunner without spawning processes.
//
// # Caffeination
//
// The Supervisor starts the caffeination program, hands back a Session that
// only knows the child's pid, and waits for the child in the background. When
// the child exits, for whatever reason, the waiter sends a ClearCaffeination
// message tagged with the Session ID. Killing a Session never clears state by
// itself; the waiter stays the only authority that declares the session over.
package lod
