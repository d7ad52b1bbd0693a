package lod

import (
	"errors"
	"os"
	"testing"
)

func TestProgramErrorUnwrap(t *testing.T) {
	err := error(&ProgramError{Program: "osascript", Kind: ErrIO, Err: os.ErrPermission})

	if !errors.Is(err, ErrIO) {
		t.Error("expected errors.Is(err, ErrIO)")
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Error("expected errors.Is(err, os.ErrPermission)")
	}
	if errors.Is(err, ErrNoStatusCode) {
		t.Error("unexpected match on ErrNoStatusCode")
	}
	if got, want := err.Error(), "osascript: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConfigErrorMessage(t *testing.T) {
	withKey := &ConfigError{Key: KeyCaffeinateApp, Path: "/c.toml", Err: ErrMalformedKey}
	if got, want := withKey.Error(), `lod config "caffeinate_app" in "/c.toml": lod: config key malformed`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	noKey := &ConfigError{Path: "/c.toml", Err: ErrConfigNotFile}
	if got, want := noKey.Error(), `lod config "/c.toml": lod: config path is not a file`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(noKey, ErrConfigNotFile) {
		t.Error("expected errors.Is to see the cause")
	}
}

func TestMultiError(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		m := &MultiError{}
		if m.Err() != nil {
			t.Error("empty MultiError should return nil from Err()")
		}
		if m.Error() != "no errors" {
			t.Errorf("Error() = %q", m.Error())
		}
	})

	t.Run("nil is ignored", func(t *testing.T) {
		m := &MultiError{}
		m.Add(nil)
		if len(m.Errors) != 0 {
			t.Errorf("expected no errors, got %d", len(m.Errors))
		}
	})

	t.Run("single", func(t *testing.T) {
		m := &MultiError{}
		m.Add(ErrSupervisorStopped)
		if m.Error() != ErrSupervisorStopped.Error() {
			t.Errorf("Error() = %q", m.Error())
		}
	})

	t.Run("multiple", func(t *testing.T) {
		m := &MultiError{}
		m.Add(ErrIO)
		m.Add(&ConfigError{Path: "/tmp", Err: os.ErrClosed})

		err := m.Err()
		if err == nil {
			t.Fatal("expected error")
		}
		if err.Error() != "2 errors occurred" {
			t.Errorf("Error() = %q", err.Error())
		}
		if !errors.Is(err, ErrIO) || !errors.Is(err, os.ErrClosed) {
			t.Error("expected both causes to be visible to errors.Is")
		}
		var cerr *ConfigError
		if !errors.As(err, &cerr) {
			t.Error("expected errors.As to find the ConfigError")
		}
	})
}
