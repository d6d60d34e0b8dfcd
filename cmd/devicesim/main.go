// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main runs a simulated attendance device for dashboard development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/harissfx/AbsensiESP32/internal/cli"
	"github.com/harissfx/AbsensiESP32/internal/command"
	"github.com/harissfx/AbsensiESP32/internal/devicesim"
	"github.com/harissfx/AbsensiESP32/internal/model"
)

const defaultUsers = "04A1B2C3:Alice,04D4E5F6:Bob,04778899:Citra"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

func printHelp() {
	fmt.Println(`devicesim - simulated attendance device

Usage: devicesim [OPTIONS]

Options:
  --ws ADDR          Push channel listen address (default :8081)
  --http ADDR        HTTP API listen address (default :8080)
  --capacity N       User slots (default 50)
  --users LIST       Seed users as uid:name,... (default three demo users)
  --status DURATION  Status broadcast period (default 5s)
  --tap DURATION     Tap a random user this often (default off)
  --help, -h         Show this help

Point the dashboard at it with:
  ABSENSI_WS_PORT=8081 ABSENSI_HTTP_PORT=8080 attendance --host 127.0.0.1`)
}

func run(argv []string) error {
	p := cli.NewArgParser(argv, "help", "h")
	if p.BoolFlag("help", "h") {
		printHelp()
		return nil
	}
	if unknown := p.Unknown("ws", "http", "capacity", "users", "status", "tap", "help", "h"); len(unknown) > 0 {
		return cli.NewUsageError("unknown flag %s", unknown[0])
	}

	wsAddr := orDefault(p.Flag("ws"), ":8081")
	httpAddr := orDefault(p.Flag("http"), ":8080")

	capacity := model.DefaultCapacity
	if v := p.Flag("capacity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cli.NewUsageError("--capacity must be a positive integer, got %q", v)
		}
		capacity = n
	}

	users, err := parseUsers(orDefault(p.Flag("users"), defaultUsers))
	if err != nil {
		return err
	}
	if len(users) > capacity {
		return cli.NewUsageError("%d seed users exceed capacity %d", len(users), capacity)
	}

	status, err := p.FlagDuration("status", 5*time.Second)
	if err != nil {
		return err
	}
	tap, err := p.FlagDuration("tap", 0)
	if err != nil {
		return err
	}

	dev := devicesim.New(devicesim.Options{
		Users:          users,
		Capacity:       capacity,
		StatusInterval: status,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go dev.Run(ctx)
	if tap > 0 {
		go tapLoop(ctx, dev, tap)
	}

	addrs := []string{wsAddr}
	if httpAddr != wsAddr {
		addrs = append(addrs, httpAddr)
	}
	return serve(ctx, dev.Handler(), addrs)
}

// serve runs one server per address until ctx ends or any of them fails.
func serve(ctx context.Context, h http.Handler, addrs []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for _, addr := range addrs {
		srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
		wg.Add(2)
		go func() {
			defer wg.Done()
			log.Printf("DEVICESIM_LISTEN | addr=%s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				once.Do(func() { firstErr = err })
				cancel()
			}
		}()
		go func() {
			defer wg.Done()
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}
	wg.Wait()
	return firstErr
}

// tapLoop records a check-in for a random enrolled user every period.
func tapLoop(ctx context.Context, dev *devicesim.Device, period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			users := dev.Users()
			if len(users) == 0 {
				continue
			}
			u := users[rand.IntN(len(users))]
			if _, err := dev.Tap(u.UID); err != nil {
				log.Printf("DEVICESIM_TAP_FAILED | uid=%s error=%v", u.UID, err)
			}
		}
	}
}

// parseUsers reads "uid:name,uid:name".
func parseUsers(list string) ([]model.User, error) {
	var users []model.User
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		uid, name, ok := strings.Cut(item, ":")
		if !ok || uid == "" {
			return nil, cli.NewUsageError("--users entry %q is not uid:name", item)
		}
		name = command.NormalizeName(name)
		if err := command.ValidateName(name); err != nil {
			return nil, cli.NewUsageError("--users entry %q: %v", item, err)
		}
		users = append(users, model.User{UID: uid, Name: name})
	}
	return users, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
