package lod

import (
	"fmt"
	"strings"
)

// Mode is one of the two mutually exclusive operating modes
type Mode int

const (
	// ModeLaptop is the mode used away from the desk
	ModeLaptop Mode = iota
	// ModeDesktop is the mode used with external displays attached
	ModeDesktop
)

// Mode string constants
const (
	modeLaptopStr  = "laptop"
	modeDesktopStr = "desktop"
)

// ModeInfo is the presentation data derived from a Mode
type ModeInfo struct {
	// Label is the human readable name
	Label string
	// Glyph is the short status indicator shown in the menu bar
	Glyph string
	// Icon is the system symbol name used for menu items
	Icon string
	// Accessibility is the text read out by assistive technology
	Accessibility string
}

var (
	laptopInfo = ModeInfo{
		Label:         "Laptop",
		Glyph:         "💻",
		Icon:          "laptopcomputer",
		Accessibility: "Laptop mode",
	}
	desktopInfo = ModeInfo{
		Label:         "Desktop",
		Glyph:         "🖥",
		Icon:          "desktopcomputer",
		Accessibility: "Desktop mode",
	}
)

// Info returns the presentation data for the mode. Any value other than
// ModeLaptop is treated as ModeDesktop, so the mapping is total.
func (m Mode) Info() ModeInfo {
	if m == ModeLaptop {
		return laptopInfo
	}
	return desktopInfo
}

// Toggle returns the other mode
func (m Mode) Toggle() Mode {
	if m == ModeLaptop {
		return ModeDesktop
	}
	return ModeLaptop
}

// String returns the string representation of a Mode
func (m Mode) String() string {
	if m == ModeLaptop {
		return modeLaptopStr
	}
	return modeDesktopStr
}

// ParseMode converts "laptop" or "desktop" (any case) into a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case modeLaptopStr:
		return ModeLaptop, nil
	case modeDesktopStr:
		return ModeDesktop, nil
	default:
		return ModeDesktop, fmt.Errorf("unknown mode: %q", s)
	}
}

// parseAutohide maps the output of `defaults read com.apple.dock autohide`
// to a Mode. A hidden Dock means laptop mode.
func parseAutohide(stdout []byte) (Mode, error) {
	if len(stdout) != 2 {
		return ModeDesktop, fmt.Errorf("%w: got %d bytes, want 2", ErrUnexpectedAutohide, len(stdout))
	}
	switch stdout[0] {
	case '0':
		return ModeDesktop, nil
	case '1':
		return ModeLaptop, nil
	default:
		return ModeDesktop, fmt.Errorf("%w: %q", ErrUnexpectedAutohide, stdout[0])
	}
}
