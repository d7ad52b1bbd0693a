// Package tui is the terminal menu for lod. Key presses only enqueue
// messages; the state machine is driven by ticking the Loop whenever the
// mailbox signals.
package tui

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/axondata/go-lod"
)

// AppName is shown in the header
const AppName = "lod"

// Run starts the menu and blocks until a Quit has been consumed. events may
// be nil when the config is not watched.
func Run(state *lod.AppState, mailbox *lod.Mailbox, events <-chan lod.ConfigEvent) error {
	_, err := tea.NewProgram(newModel(state, mailbox, events)).Run()
	return err
}

type model struct {
	state   *lod.AppState
	mailbox *lod.Mailbox
	loop    *lod.Loop
	events  <-chan lod.ConfigEvent
	keys    KeyMap

	width     int
	notice    string
	noticeErr bool
}

func newModel(state *lod.AppState, mailbox *lod.Mailbox, events <-chan lod.ConfigEvent) model {
	return model{
		state:   state,
		mailbox: mailbox,
		loop:    lod.NewLoop(mailbox, state),
		events:  events,
		keys:    DefaultKeyMap(),
	}
}

func (m model) Init() tea.Cmd {
	if m.events == nil {
		return m.waitForMail
	}
	return tea.Batch(m.waitForMail, m.waitForConfig)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.mailbox.Send(lod.QuitMessage())
		case key.Matches(msg, m.keys.Mode):
			m.mailbox.Send(lod.ToggleModeMessage())
		case key.Matches(msg, m.keys.Caffeinate):
			m.mailbox.Send(lod.ToggleCaffeinationMessage())
		}

	case MailboxReadyMsg:
		if m.loop.Tick(context.Background()) {
			return m, tea.Quit
		}
		return m, m.waitForMail

	case ConfigEventMsg:
		if msg.Closed {
			m.events = nil
			return m, nil
		}
		if msg.Event.Err != nil {
			m.notice = "config: " + msg.Event.Err.Error()
			m.noticeErr = true
		} else {
			m.notice = "config reloaded"
			m.noticeErr = false
		}
		return m, m.waitForConfig
	}

	return m, nil
}

func (m model) View() tea.View {
	var v tea.View
	p := m.state.Presentation()

	var b strings.Builder
	b.WriteString(m.renderHeader(p))
	b.WriteByte('\n')
	b.WriteString(styleDim.Render(strings.Repeat("━", max(m.width, 1))))
	b.WriteByte('\n')
	b.WriteString(m.renderHelpLine(p))

	if m.notice != "" {
		b.WriteByte('\n')
		if m.noticeErr {
			b.WriteString(styleError.Render(" " + m.notice))
		} else {
			b.WriteString(styleOK.Render(" " + m.notice))
		}
	}

	v.SetContent(b.String())
	return v
}

func (m model) renderHeader(p lod.Presentation) string {
	title := styleHeader.Render(" " + AppName + " ")
	mode := styleMode.Render(p.Current.Glyph + " " + p.Current.Accessibility)

	caffeine := styleDim.Render("○ sleep allowed")
	if p.Caffeinated {
		caffeine = styleAwake.Render("● caffeinated")
	}

	sep := styleDim.Render("   ")
	return lipgloss.JoinHorizontal(lipgloss.Center, title, sep, mode, sep, caffeine)
}

func (m model) renderHelpLine(p lod.Presentation) string {
	caffeinate := "start caffeination"
	if p.Caffeinated {
		caffeinate = "stop caffeination"
	}

	parts := []string{
		m.keys.Mode.Help().Key + " switch to " + p.Next.Label,
		m.keys.Caffeinate.Help().Key + " " + caffeinate,
		m.keys.Quit.Help().Key + " " + m.keys.Quit.Help().Desc,
	}
	return styleDim.Render(" " + strings.Join(parts, "  │  "))
}

func (m model) waitForMail() tea.Msg {
	<-m.mailbox.Ready()
	return MailboxReadyMsg{}
}

func (m model) waitForConfig() tea.Msg {
	ev, ok := <-m.events
	if !ok {
		return ConfigEventMsg{Closed: true}
	}
	return ConfigEventMsg{Event: ev}
}
