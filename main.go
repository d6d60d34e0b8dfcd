// attendance - operator dashboard for the attendance device.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/harissfx/AbsensiESP32/internal/cli"
	"github.com/harissfx/AbsensiESP32/internal/config"
	"github.com/harissfx/AbsensiESP32/internal/telemetry"
	"github.com/harissfx/AbsensiESP32/internal/ui/dashboard"
	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if cmd == cli.CmdTUI && args.Err == nil {
		err = runTUI(ctx, args)
	} else {
		err = cli.Run(ctx, cmd, args, cli.StdEnv())
	}
	if err != nil {
		if !args.JSON {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(cli.ExitCode(err))
	}
}

// runTUI starts the dashboard and blocks until the operator quits.
func runTUI(ctx context.Context, args cli.Args) error {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}

	logFile, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	sessionID := uuid.NewString()
	log.Printf("DASHBOARD_START | session=%s host=%s version=%s", sessionID, cfg.Device.Host, Version)

	var metrics *telemetry.Metrics
	if cfg.Metrics.Listen != "" {
		metrics = telemetry.NewMetrics()
		srv := telemetry.NewServer(cfg.Metrics.Listen, metrics)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				log.Printf("METRICS_FAILED | addr=%s error=%v", cfg.Metrics.Listen, err)
			}
		}()
	}

	s := cli.BuildSession(cfg, metrics, sessionID)
	s.Start()
	defer s.Close()

	var watcher *config.Watcher
	if path := activeConfigPath(args); path != "" {
		watcher, err = config.NewWatcher(path, config.DefaultDebounce)
		if err != nil {
			log.Printf("CONFIG_WATCH_FAILED | path=%s error=%v", path, err)
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	m := dashboard.New(dashboard.Options{
		Session:       s,
		Theme:         styles.NewTheme(cfg.UI.Theme),
		Host:          cfg.Device.Host,
		ToastDuration: cfg.UI.ToastDuration(),
		FlashDuration: cfg.UI.FlashDuration(),
		Watcher:       watcher,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running dashboard: %w", err)
	}
	log.Printf("DASHBOARD_EXIT | session=%s", sessionID)
	return nil
}

// openLog sends the standard logger to the configured file only. The
// alternate screen owns the terminal, so --verbose has no effect here.
func openLog(cfg *config.Config) (*os.File, error) {
	path := cfg.Log.Path
	if path == "" {
		var err error
		if path, err = config.DefaultLogPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}
	return f, nil
}

// activeConfigPath is the file worth watching: --config, or the default
// file when one exists.
func activeConfigPath(args cli.Args) string {
	if args.ConfigPath != "" {
		return args.ConfigPath
	}
	return config.ActivePath()
}
