// Command lod switches between laptop and desktop mode and keeps the
// machine awake on request, from a small terminal menu.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axondata/go-lod"
	"github.com/axondata/go-lod/internal/tui"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		configPath  = flag.String("config", "", "Path to config.toml (default ~/.config/lod/config.toml)")
		modeName    = flag.String("mode", "", "Initial mode, laptop or desktop (default: detect)")
		logPath     = flag.String("log", "", "Append log output to this file")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		v := lod.GetVersion()
		fmt.Printf("%s %s (config format %s)\n", tui.AppName, v.Version, v.ConfigFormat)
		return
	}

	if err := run(*configPath, *modeName, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, modeName, logPath string) error {
	logger, closeLog, err := openLog(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	if configPath == "" {
		configPath, err = lod.DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	cfg, err := lod.LoadConfig(configPath, lod.WithConfigLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	mode, err := initialMode(ctx, modeName, logger)
	if err != nil {
		_ = cfg.Cleanup()
		return err
	}
	logger.Printf("starting in %s mode", mode)

	mailbox := lod.NewMailbox()
	state := lod.NewAppState(mode, cfg, mailbox, lod.WithLogger(logger))

	events, stopWatch, err := cfg.Watch(ctx)
	if err != nil {
		logger.Printf("config watch disabled: %v", err)
	}

	// A termination signal is just another quit request
	go func() {
		<-ctx.Done()
		mailbox.Send(lod.QuitMessage())
	}()

	runErr := tui.Run(state, mailbox, events)

	if stopWatch != nil {
		if err := stopWatch(); err != nil {
			logger.Printf("stopping config watch: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := state.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
		if runErr == nil {
			runErr = err
		}
	}

	return runErr
}

func initialMode(ctx context.Context, name string, logger *log.Logger) (lod.Mode, error) {
	if name != "" {
		return lod.ParseMode(name)
	}

	mode, err := lod.DetectMode(ctx, lod.ExecRunner{})
	if err != nil {
		logger.Printf("mode detection failed, assuming %s: %v", mode, err)
	}
	return mode, nil
}

// openLog returns a logger writing to path. The menu owns the terminal, so
// without a path log output is discarded.
func openLog(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, lod.FileMode)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return log.New(f, "lod: ", log.LstdFlags), func() { _ = f.Close() }, nil
}
