package lod

import "github.com/google/uuid"

// MessageKind identifies a state change request
type MessageKind int

const (
	// MsgToggleMode flips between laptop and desktop mode
	MsgToggleMode MessageKind = iota
	// MsgToggleCaffeination starts caffeination when idle, kills it when running
	MsgToggleCaffeination
	// MsgClearCaffeination marks the caffeination session as finished
	MsgClearCaffeination
	// MsgQuit stops the consumer loop
	MsgQuit
)

// MessageKind string constants
const (
	msgToggleModeStr         = "toggle-mode"
	msgToggleCaffeinationStr = "toggle-caffeination"
	msgClearCaffeinationStr  = "clear-caffeination"
	msgQuitStr               = "quit"
	msgUnknownStr            = "unknown"
)

// String returns the string representation of a MessageKind
func (k MessageKind) String() string {
	switch k {
	case MsgToggleMode:
		return msgToggleModeStr
	case MsgToggleCaffeination:
		return msgToggleCaffeinationStr
	case MsgClearCaffeination:
		return msgClearCaffeinationStr
	case MsgQuit:
		return msgQuitStr
	default:
		return msgUnknownStr
	}
}

// Message is a request to change application state. It is the only way
// anything outside the consumer loop can influence AppState.
type Message struct {
	// Kind is the requested transition
	Kind MessageKind
	// Session tags a MsgClearCaffeination with the session it refers to.
	// uuid.Nil clears whatever session is live.
	Session uuid.UUID
}

// ToggleModeMessage returns a MsgToggleMode message
func ToggleModeMessage() Message {
	return Message{Kind: MsgToggleMode}
}

// ToggleCaffeinationMessage returns a MsgToggleCaffeination message
func ToggleCaffeinationMessage() Message {
	return Message{Kind: MsgToggleCaffeination}
}

// ClearCaffeinationMessage returns a MsgClearCaffeination message for the
// given session
func ClearCaffeinationMessage(session uuid.UUID) Message {
	return Message{Kind: MsgClearCaffeination, Session: session}
}

// QuitMessage returns a MsgQuit message
func QuitMessage() Message {
	return Message{Kind: MsgQuit}
}

// String returns the string representation of a Message
func (m Message) String() string {
	if m.Kind == MsgClearCaffeination && m.Session != uuid.Nil {
		return m.Kind.String() + "(" + m.Session.String() + ")"
	}
	return m.Kind.String()
}
