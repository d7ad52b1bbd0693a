package lod

import (
	"io/fs"
	"time"
)

// Program names used by the core
const (
	// DefaultScriptRunner runs the side-effect scripts written by Config
	DefaultScriptRunner = "osascript"

	// DefaultKillProgram is used to deliver SIGKILL to a caffeination child
	DefaultKillProgram = "kill"
)

// Timing defaults
const (
	// DefaultWatchDebounce coalesces bursts of writes to the config file
	DefaultWatchDebounce = 25 * time.Millisecond

	// DefaultStopGrace is how long background tasks get to finish on shutdown
	// before their context is cancelled
	DefaultStopGrace = 100 * time.Millisecond
)

// File modes
const (
	// DirMode is the default mode for created directories
	DirMode fs.FileMode = 0o755

	// FileMode is the default mode for created files
	FileMode fs.FileMode = 0o644
)

// Config file locations, relative to the user's home directory
const (
	// ConfigDirName is the directory holding config.toml
	ConfigDirName = ".config/lod"

	// ConfigFileName is the name of the TOML configuration file
	ConfigFileName = "config.toml"
)
