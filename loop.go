package lod

import (
	"context"
)

// Handler consumes state change messages. AppState implements it.
type Handler interface {
	Handle(ctx context.Context, msg Message)
}

// Presenter is implemented by handlers that expose a renderable snapshot,
// such as AppState
type Presenter interface {
	Presentation() Presentation
}

// Loop is the single consumer of a Mailbox. All Handler calls happen on the
// goroutine that calls Tick or Run.
type Loop struct {
	mailbox  *Mailbox
	handler  Handler
	onChange func(Message, Presentation)
}

// LoopOption configures a Loop
type LoopOption func(*Loop)

// WithOnChange registers a callback invoked after each delivered message
// with the handler's Presentation, typically to re-render the menu. Handlers
// that are not a Presenter report the zero Presentation.
func WithOnChange(fn func(Message, Presentation)) LoopOption {
	return func(l *Loop) {
		l.onChange = fn
	}
}

// NewLoop creates a Loop draining mailbox into handler
func NewLoop(mailbox *Mailbox, handler Handler, opts ...LoopOption) *Loop {
	l := &Loop{
		mailbox: mailbox,
		handler: handler,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Tick delivers every queued message in order and reports whether a Quit was
// seen. Quit is never passed to the handler; it closes the mailbox, so any
// message queued behind it is discarded and later sends are dropped. Once a
// Quit has been seen every further Tick returns true.
func (l *Loop) Tick(ctx context.Context) bool {
	for {
		msg, ok := l.mailbox.next()
		if !ok {
			return l.mailbox.Closed()
		}

		if msg.Kind == MsgQuit {
			l.mailbox.close()
			return true
		}

		l.handler.Handle(ctx, msg)
		if l.onChange != nil {
			var p Presentation
			if presenter, ok := l.handler.(Presenter); ok {
				p = presenter.Presentation()
			}
			l.onChange(msg, p)
		}
	}
}

// Run ticks whenever the mailbox signals new messages, for hosts without an
// event loop of their own. It returns nil after a Quit and ctx.Err() if ctx
// ends first.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if l.Tick(ctx) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.mailbox.Ready():
		}
	}
}
