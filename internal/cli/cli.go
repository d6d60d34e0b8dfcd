// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"strings"
	"time"
)

// Version information (overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// DefaultSyncTimeout bounds how long one-shot commands wait for the
// device's first snapshot.
const DefaultSyncTimeout = 10 * time.Second

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdUsers
	CmdLogs
	CmdStats
	CmdRename
	CmdDelete
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdTUI:     "tui",
	CmdUsers:   "users",
	CmdLogs:    "logs",
	CmdStats:   "stats",
	CmdRename:  "rename",
	CmdDelete:  "delete",
	CmdExport:  "export",
	CmdConfig:  "config",
	CmdVersion: "version",
	CmdHelp:    "help",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose    bool
	JSON       bool
	ConfigPath string // --config
	Host       string // --host overrides device.host

	// Command-specific
	Subcommand string
	UID        string
	Name       string
	Out        string
	Yes        bool
	Force      bool
	Timeout    time.Duration

	// Unknown is the command word that matched nothing.
	Unknown string
	// Err is set when the command line could not be parsed.
	Err error

	Raw []string
}

const usageText = `attendance - operator dashboard for the RFID attendance device

Usage:
  attendance                         Start the dashboard (default)
  attendance users                   Print registered users
  attendance logs                    Print the attendance log and stats
  attendance stats                   Print the stats line
  attendance rename <uid> <name>     Rename a user (or --uid/--name)
  attendance delete <uid> [--yes]    Delete a user
  attendance export [--out FILE]     Download the CSV log (stdout by default)
  attendance config show             Print the effective configuration
  attendance config path             Print the config file path
  attendance config init [--force]   Write a default config file
  attendance version                 Print version information
  attendance help                    Show this help

Global flags:
  --host HOST        Device address (overrides device.host)
  --config FILE      Use FILE instead of ~/.attendance/config.toml
  --json             Machine-readable output
  --timeout DUR      Wait at most DUR for the device (default 10s)
  -v, --verbose      Log to stderr (one-shot commands; the dashboard logs to a file)

Environment:
  ABSENSI_HOST, ABSENSI_WS_PORT, ABSENSI_HTTP_PORT, ABSENSI_LOG, ABSENSI_METRICS
`

// Usage returns the help text.
func Usage() string {
	return usageText
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if args.Err != nil {
		return CmdHelp, args
	}
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	word := strings.ToLower(remaining[0])
	rest := remaining[1:]
	args.Raw = rest

	switch word {
	case "tui", "dashboard":
		return CmdTUI, args
	case "users", "u":
		return CmdUsers, args
	case "logs", "log", "l":
		return CmdLogs, args
	case "stats", "status", "s":
		return CmdStats, args
	case "rename":
		parseRenameArgs(&args, rest)
		return CmdRename, args
	case "delete", "rm":
		parseDeleteArgs(&args, rest)
		return CmdDelete, args
	case "export":
		parseExportArgs(&args, rest)
		return CmdExport, args
	case "config":
		parseConfigArgs(&args, rest)
		return CmdConfig, args
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		args.Unknown = remaining[0]
		args.Err = NewUsageError("unknown command %q", remaining[0])
		return CmdHelp, args
	}
}

// parseGlobalFlags pulls flags valid for every command out of argv.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	args := Args{Timeout: DefaultSyncTimeout}

	value := func(i *int, name string) string {
		arg := argv[*i]
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v
		}
		if *i+1 < len(argv) {
			*i++
			return argv[*i]
		}
		args.Err = NewUsageError("%s needs a value", name)
		return ""
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "--json":
			args.JSON = true
		case arg == "--host" || strings.HasPrefix(arg, "--host="):
			args.Host = value(&i, "--host")
		case arg == "--config" || strings.HasPrefix(arg, "--config="):
			args.ConfigPath = value(&i, "--config")
		case arg == "--timeout" || strings.HasPrefix(arg, "--timeout="):
			p := NewArgParser([]string{"--timeout=" + value(&i, "--timeout")})
			d, err := p.FlagDuration("timeout", DefaultSyncTimeout)
			if err != nil {
				args.Err = err
			}
			args.Timeout = d
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}

func parseRenameArgs(args *Args, rest []string) {
	p := NewArgParser(rest)
	args.UID = p.Flag("uid")
	args.Name = p.Flag("name", "n")

	pos := 0
	if args.UID == "" {
		args.UID = p.Positional(0)
		pos = 1
	}
	if args.Name == "" {
		args.Name = strings.Join(p.PositionalFrom(pos), " ")
	}

	switch {
	case len(p.Unknown("uid", "name", "n")) > 0:
		args.Err = NewUsageError("rename: unknown flag %s", p.Unknown("uid", "name", "n")[0])
	case args.UID == "":
		args.Err = NewUsageError("rename: a UID is required")
	case strings.TrimSpace(args.Name) == "":
		args.Err = NewUsageError("rename: a new name is required")
	}
}

func parseDeleteArgs(args *Args, rest []string) {
	p := NewArgParser(rest, "y", "yes")
	args.UID = p.Flag("uid")
	if args.UID == "" {
		args.UID = p.Positional(0)
	}
	args.Yes = p.BoolFlag("y", "yes")

	switch {
	case len(p.Unknown("uid", "y", "yes")) > 0:
		args.Err = NewUsageError("delete: unknown flag %s", p.Unknown("uid", "y", "yes")[0])
	case args.UID == "":
		args.Err = NewUsageError("delete: a UID is required")
	}
}

func parseExportArgs(args *Args, rest []string) {
	p := NewArgParser(rest)
	args.Out = p.Flag("out", "o")
	if args.Out == "" {
		args.Out = p.Positional(0)
	}
	if u := p.Unknown("out", "o"); len(u) > 0 {
		args.Err = NewUsageError("export: unknown flag %s", u[0])
	}
}

func parseConfigArgs(args *Args, rest []string) {
	p := NewArgParser(rest, "force", "f")
	args.Subcommand = p.Positional(0)
	if args.Subcommand == "" {
		args.Subcommand = "show"
	}
	args.Force = p.BoolFlag("force", "f")

	switch args.Subcommand {
	case "show", "path", "init":
	default:
		args.Err = NewUsageError("config: unknown subcommand %q (show, path, init)", args.Subcommand)
	}
}
