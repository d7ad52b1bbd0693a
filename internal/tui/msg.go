package tui

import "github.com/axondata/go-lod"

// MailboxReadyMsg is sent when the mailbox has signalled new messages
type MailboxReadyMsg struct{}

// ConfigEventMsg carries the outcome of a config reload. Closed is true once
// the watch has stopped.
type ConfigEventMsg struct {
	Event  lod.ConfigEvent
	Closed bool
}
