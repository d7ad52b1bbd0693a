package lod

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"
)

// Config keys
const (
	KeyLaptopScript      = "laptop_applescript"
	KeyDesktopScript     = "desktop_applescript"
	KeyCaffeinateApp     = "caffeinate_app"
	KeyCaffeinateOptions = "caffeinate_options"
	KeyScriptRunner      = "script_runner"
)

// scriptExt is appended to the materialised script files
const scriptExt = ".scpt"

//go:embed default_config.toml
var defaultConfig []byte

// Config is loaded from config.toml. The two mode scripts are written to a
// private temporary directory so they can be run as files; Cleanup removes
// them. Config is safe for concurrent use, which lets Watch reload it while
// AppState reads from it.
type Config struct {
	// Path is the config.toml file
	Path string

	// WatchDebounce coalesces bursts of writes seen by Watch
	WatchDebounce time.Duration

	logger *log.Logger

	mu                sync.RWMutex
	tempDir           string
	ownTempDir        bool
	scripts           map[Mode]string
	scriptRunner      string
	caffeinateApp     string
	caffeinateOptions string
}

var _ Settings = (*Config)(nil)

// ConfigOption configures a Config
type ConfigOption func(*Config)

// WithTempDir writes scripts into dir instead of a fresh temporary
// directory. Cleanup still removes dir.
func WithTempDir(dir string) ConfigOption {
	return func(c *Config) {
		c.tempDir = dir
	}
}

// WithConfigLogger sets the logger used by Watch
func WithConfigLogger(l *log.Logger) ConfigOption {
	return func(c *Config) {
		c.logger = l
	}
}

// WithWatchDebounce sets the debounce applied to config file events
func WithWatchDebounce(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.WatchDebounce = d
	}
}

// DefaultConfigPath returns ~/.config/lod/config.toml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ConfigDirName, ConfigFileName), nil
}

// LoadConfig reads the config file at path, creating it with defaults if it
// does not exist, and writes the mode scripts to a temporary directory.
func LoadConfig(path string, opts ...ConfigOption) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	c := &Config{
		Path:          absPath,
		WatchDebounce: DefaultWatchDebounce,
		logger:        log.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := ensureConfigFile(c.Path); err != nil {
		return nil, err
	}

	if c.tempDir == "" {
		dir, err := os.MkdirTemp("", "lod-*")
		if err != nil {
			return nil, &ConfigError{Path: os.TempDir(), Err: err}
		}
		c.tempDir = dir
		c.ownTempDir = true
	} else if err := os.MkdirAll(c.tempDir, DirMode); err != nil {
		return nil, &ConfigError{Path: c.tempDir, Err: err}
	}

	c.scripts = map[Mode]string{
		ModeLaptop:  filepath.Join(c.tempDir, KeyLaptopScript+scriptExt),
		ModeDesktop: filepath.Join(c.tempDir, KeyDesktopScript+scriptExt),
	}

	if err := c.Reload(); err != nil {
		if c.ownTempDir {
			_ = os.RemoveAll(c.tempDir)
		}
		return nil, err
	}

	return c, nil
}

// ensureConfigFile creates the config directory and a default config file
// when they are missing
func ensureConfigFile(path string) error {
	dir := filepath.Dir(path)

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return &ConfigError{Path: dir, Err: err}
		}
	case err != nil:
		return &ConfigError{Path: dir, Err: err}
	case !info.IsDir():
		return &ConfigError{Path: dir, Err: ErrConfigNotDir}
	}

	info, err = os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if err := renameio.WriteFile(path, defaultConfig, FileMode); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	case err != nil:
		return &ConfigError{Path: path, Err: err}
	case !info.Mode().IsRegular():
		return &ConfigError{Path: path, Err: ErrConfigNotFile}
	}

	return nil
}

// Reload re-reads the config file and rewrites both scripts in place. On
// error the previous values stay in effect.
func (c *Config) Reload() error {
	var table map[string]any
	if _, err := toml.DecodeFile(c.Path, &table); err != nil {
		return &ConfigError{Path: c.Path, Err: err}
	}

	laptop, err := c.requireString(table, KeyLaptopScript)
	if err != nil {
		return err
	}
	desktop, err := c.requireString(table, KeyDesktopScript)
	if err != nil {
		return err
	}
	app, err := c.optionalString(table, KeyCaffeinateApp)
	if err != nil {
		return err
	}
	options, err := c.optionalString(table, KeyCaffeinateOptions)
	if err != nil {
		return err
	}
	runner, err := c.optionalString(table, KeyScriptRunner)
	if err != nil {
		return err
	}
	if runner == "" {
		runner = DefaultScriptRunner
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tempDir == "" {
		return &ConfigError{Path: c.Path, Err: os.ErrClosed}
	}

	// Both scripts are staged before either is replaced, so a failed write
	// leaves the previous pair in place. Only a failing rename of the second
	// script after the first was swapped can still mix them.
	bodies := [...]string{laptop, desktop}
	var staged []*renameio.PendingFile
	defer func() {
		for _, f := range staged {
			_ = f.Cleanup()
		}
	}()
	for i, mode := range []Mode{ModeLaptop, ModeDesktop} {
		f, err := c.stageScript(mode, bodies[i])
		if err != nil {
			return err
		}
		staged = append(staged, f)
	}
	for i, mode := range []Mode{ModeLaptop, ModeDesktop} {
		if err := staged[i].CloseAtomicallyReplace(); err != nil {
			return &ConfigError{Key: scriptKey(mode), Path: c.scripts[mode], Err: err}
		}
	}

	c.scriptRunner = runner
	c.caffeinateApp = app
	c.caffeinateOptions = options

	return nil
}

func (c *Config) stageScript(mode Mode, body string) (*renameio.PendingFile, error) {
	path := c.scripts[mode]
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(FileMode))
	if err != nil {
		return nil, &ConfigError{Key: scriptKey(mode), Path: path, Err: err}
	}
	if _, err := f.WriteString(body); err != nil {
		_ = f.Cleanup()
		return nil, &ConfigError{Key: scriptKey(mode), Path: path, Err: err}
	}
	return f, nil
}

func (c *Config) requireString(table map[string]any, key string) (string, error) {
	v, ok := table[key]
	if !ok {
		return "", &ConfigError{Key: key, Path: c.Path, Err: ErrMissingKey}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ConfigError{Key: key, Path: c.Path, Err: ErrMalformedKey}
	}
	return s, nil
}

func (c *Config) optionalString(table map[string]any, key string) (string, error) {
	if _, ok := table[key]; !ok {
		return "", nil
	}
	return c.requireString(table, key)
}

func scriptKey(mode Mode) string {
	if mode == ModeLaptop {
		return KeyLaptopScript
	}
	return KeyDesktopScript
}

// ScriptPath implements Settings
func (c *Config) ScriptPath(mode Mode) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tempDir == "" {
		return ""
	}
	return c.scripts[mode]
}

// ScriptRunner implements Settings
func (c *Config) ScriptRunner() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scriptRunner
}

// Caffeination implements Settings
func (c *Config) Caffeination() (program, arg string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caffeinateApp, c.caffeinateOptions, c.caffeinateApp != ""
}

// Cleanup removes the temporary scripts. It is safe to call more than once.
func (c *Config) Cleanup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tempDir == "" {
		return nil
	}

	dir := c.tempDir
	c.tempDir = ""
	if err := os.RemoveAll(dir); err != nil {
		return &ConfigError{Path: dir, Err: err}
	}
	return nil
}
