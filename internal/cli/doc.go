// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the command line and runs the one-shot commands.
//
// With no arguments the program starts the dashboard; main handles that
// case. Everything else goes through Run:
//
//	cmd, args := cli.Parse()
//	if cmd != cli.CmdTUI {
//	    os.Exit(cli.ExitCode(cli.Run(ctx, cmd, args, cli.StdEnv())))
//	}
//
// Snapshot commands (users, logs, stats) open the push channel, wait for
// the device's first user and log snapshot, print it and disconnect.
// rename and delete do the same before sending their request so the UID
// can be resolved to the device's current index. export only talks HTTP.
//
// Destructive commands prompt on a terminal and require --yes otherwise.
// --json wraps every result in a JSONResponse envelope.
package cli
