// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/harissfx/AbsensiESP32/internal/command"
	"github.com/harissfx/AbsensiESP32/internal/config"
	"github.com/harissfx/AbsensiESP32/internal/link"
	"github.com/harissfx/AbsensiESP32/internal/session"
	"github.com/harissfx/AbsensiESP32/internal/telemetry"
	"github.com/harissfx/AbsensiESP32/internal/ui/render"
	"github.com/harissfx/AbsensiESP32/internal/util"
)

// Env is where one-shot commands read and write.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	// Confirm overrides the interactive prompt (nil = Confirm).
	Confirm func(action string, opts ConfirmOptions) (bool, error)
}

// StdEnv writes to the process streams.
func StdEnv() Env {
	return Env{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e Env) confirm(action string, opts ConfirmOptions) (bool, error) {
	if e.Confirm != nil {
		return e.Confirm(action, opts)
	}
	return Confirm(action, opts)
}

// =============================================================================
// WIRING
// =============================================================================

// LoadConfig loads --config or the default file and applies --host.
func LoadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if args.Host != "" {
		cfg.Device.Host = args.Host
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// NewCommandClient builds the request/response client for cfg.
func NewCommandClient(cfg *config.Config, metrics *telemetry.Metrics, sessionID string) *command.Client {
	cc := command.Config{
		BaseURL:   cfg.HTTPBaseURL(),
		Timeout:   cfg.Commands.RequestTimeout(),
		SessionID: sessionID,
	}
	if metrics != nil {
		cc.Observer = metrics
	}
	return command.NewClient(cc)
}

// BuildSession wires a link manager and command client for cfg into a
// session. The link is not started.
func BuildSession(cfg *config.Config, metrics *telemetry.Metrics, sessionID string) *session.Session {
	lc := link.Config{
		URL:            cfg.PushURL(),
		ReconnectDelay: cfg.Link.ReconnectDelay(),
		Dialer: &link.WebSocketDialer{
			HandshakeTimeout: cfg.Link.DialTimeout(),
			ReadTimeout:      cfg.Link.ReadTimeout(),
			WriteTimeout:     cfg.Link.WriteTimeout(),
		},
		SessionID: sessionID,
	}
	if metrics != nil {
		lc.Observer = metrics
	}

	return session.New(session.Config{
		Link:             link.NewManager(lc),
		Commands:         NewCommandClient(cfg, metrics, sessionID),
		Metrics:          metrics,
		ID:               sessionID,
		Capacity:         cfg.Device.Capacity,
		RefreshPerMinute: cfg.UI.RefreshPerMinute,
	})
}

// connect starts a session and waits for the device's first snapshot.
func connect(ctx context.Context, cfg *config.Config, args Args) (*session.Session, error) {
	s := BuildSession(cfg, nil, "")
	s.Start()

	ctx, cancel := context.WithTimeout(ctx, args.Timeout)
	defer cancel()
	if err := s.WaitSynced(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("no snapshot from %s: %w", cfg.PushURL(), err)
	}
	return s, nil
}

// =============================================================================
// DISPATCH
// =============================================================================

// setupLogging sends link and command log lines to stderr with --verbose
// and discards them otherwise, so they never mix with command output.
func setupLogging(args Args, env Env) {
	if args.Verbose {
		log.SetOutput(env.Stderr)
		return
	}
	log.SetOutput(io.Discard)
}

// Run executes a one-shot command. CmdTUI is the caller's job.
func Run(ctx context.Context, cmd Command, args Args, env Env) error {
	setupColors()
	setupLogging(args, env)
	err := run(ctx, cmd, args, env)
	if err != nil && args.JSON {
		NewJSONErrorResponse(cmd.String(), err).Write(env.Stdout)
	}
	return err
}

func run(ctx context.Context, cmd Command, args Args, env Env) error {
	if args.Err != nil {
		fmt.Fprint(env.Stderr, Usage())
		return args.Err
	}

	switch cmd {
	case CmdHelp:
		_, err := fmt.Fprint(env.Stdout, Usage())
		return err
	case CmdVersion:
		return RunVersion(args, env)
	case CmdConfig:
		if args.Subcommand == "init" {
			return wrap("config", RunConfigInit(args, env))
		}
	case CmdTUI:
		return errors.New("the dashboard is not a one-shot command")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	switch cmd {
	case CmdUsers, CmdLogs, CmdStats:
		return wrap(cmd.String(), RunSnapshot(ctx, cmd, cfg, args, env))
	case CmdRename:
		return wrap("rename", RunRename(ctx, cfg, args, env))
	case CmdDelete:
		return wrap("delete", RunDelete(ctx, cfg, args, env))
	case CmdExport:
		return wrap("export", RunExport(ctx, cfg, args, env))
	case CmdConfig:
		return wrap("config", RunConfig(cfg, args, env))
	default:
		return NewUsageError("unknown command %d", cmd)
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

// RunSnapshot prints users, logs or stats from one fresh snapshot.
func RunSnapshot(ctx context.Context, cmd Command, cfg *config.Config, args Args, env Env) error {
	s, err := connect(ctx, cfg, args)
	if err != nil {
		return err
	}
	defer s.Close()
	t := s.Table()

	if args.JSON {
		var data any
		switch cmd {
		case CmdUsers:
			data = t.Users
		case CmdLogs:
			data = map[string]any{"logs": t.Logs, "stats": t.Stats}
		default:
			data = t.Stats
		}
		return NewJSONResponse(cmd.String(), data).Write(env.Stdout)
	}

	switch cmd {
	case CmdUsers:
		return render.WriteUsers(env.Stdout, t)
	case CmdLogs:
		if err := render.WriteLogs(env.Stdout, t); err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout)
		return render.WriteStats(env.Stdout, t.Stats)
	default:
		return render.WriteStats(env.Stdout, t.Stats)
	}
}

// RunRename renames the user holding args.UID.
func RunRename(ctx context.Context, cfg *config.Config, args Args, env Env) error {
	name := command.NormalizeName(args.Name)
	if err := command.ValidateName(name); err != nil {
		return err
	}

	s, err := connect(ctx, cfg, args)
	if err != nil {
		return err
	}
	defer s.Close()

	notice, err := s.Rename(ctx, args.UID, name)
	return report(env, args, "rename", notice, map[string]string{"uid": args.UID, "name": name}, err)
}

// RunDelete deletes the user holding args.UID after confirmation.
func RunDelete(ctx context.Context, cfg *config.Config, args Args, env Env) error {
	s, err := connect(ctx, cfg, args)
	if err != nil {
		return err
	}
	defer s.Close()

	_, user, err := s.Resolve(args.UID)
	if err != nil {
		return err
	}
	ok, err := env.confirm(fmt.Sprintf("Delete %s (%s)", user.Name, user.UID), ConfirmOptions{Yes: args.Yes, JSON: args.JSON})
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(env.Stderr, DimStyle.Render("Cancelled."))
		return nil
	}

	notice, err := s.Delete(ctx, args.UID)
	return report(env, args, "delete", notice, map[string]string{"uid": user.UID, "name": user.Name}, err)
}

func report(env Env, args Args, cmd string, n session.Notice, data any, err error) error {
	if err != nil {
		if !args.JSON {
			fmt.Fprintln(env.Stderr, RenderNotice(n))
		}
		return err
	}
	if args.JSON {
		return NewJSONResponse(cmd, data).Write(env.Stdout)
	}
	_, werr := fmt.Fprintln(env.Stdout, RenderNotice(n))
	return werr
}

// RunExport downloads the CSV log to args.Out, or stdout when empty or "-".
func RunExport(ctx context.Context, cfg *config.Config, args Args, env Env) error {
	client := NewCommandClient(cfg, nil, "")

	ctx, cancel := context.WithTimeout(ctx, args.Timeout)
	defer cancel()

	if args.Out == "" || args.Out == "-" {
		if args.JSON {
			return NewUsageError("export: --json needs --out FILE")
		}
		_, err := client.DownloadExport(ctx, env.Stdout)
		return err
	}

	var buf bytes.Buffer
	n, err := client.DownloadExport(ctx, &buf)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(args.Out, buf.Bytes(), 0644); err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("export", map[string]any{"path": args.Out, "bytes": n}).Write(env.Stdout)
	}
	_, err = fmt.Fprintln(env.Stdout, RenderNotice(session.Notice{Text: fmt.Sprintf("Wrote %d bytes to %s", n, args.Out), OK: true}))
	return err
}

// RunConfig handles "config show" and "config path".
func RunConfig(cfg *config.Config, args Args, env Env) error {
	switch args.Subcommand {
	case "path":
		path := configPath(args)
		if args.JSON {
			return NewJSONResponse("config", map[string]string{"path": path}).Write(env.Stdout)
		}
		_, err := fmt.Fprintln(env.Stdout, path)
		return err
	default:
		if args.JSON {
			return NewJSONResponse("config", cfg).Write(env.Stdout)
		}
		_, err := fmt.Fprint(env.Stdout, cfg.String())
		return err
	}
}

// RunConfigInit writes a default config file.
func RunConfigInit(args Args, env Env) error {
	path := configPath(args)
	if _, err := os.Stat(path); err == nil && !args.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	var err error
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		err = config.SaveJSON(config.Default(), path)
	} else {
		err = config.SaveTOML(config.Default(), path)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.Stdout, RenderNotice(session.Notice{Text: "Wrote " + path, OK: true}))
	return err
}

// configPath is --config, the file in use, or where a new file would go.
func configPath(args Args) string {
	if args.ConfigPath != "" {
		return args.ConfigPath
	}
	if p := config.ActivePath(); p != "" {
		return p
	}
	p, err := config.ConfigPathTOML()
	if err != nil {
		return "config.toml"
	}
	return p
}

// RunVersion prints build information.
func RunVersion(args Args, env Env) error {
	if args.JSON {
		return NewJSONResponse("version", map[string]string{
			"version": Version,
			"commit":  GitCommit,
			"built":   BuildDate,
			"go":      runtime.Version(),
		}).Write(env.Stdout)
	}
	_, err := fmt.Fprintf(env.Stdout, "%s %s (commit %s, built %s, %s %s/%s)\n",
		TitleStyle.Render("attendance"), Version, GitCommit, BuildDate,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
