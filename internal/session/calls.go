// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/harissfx/AbsensiESP32/internal/command"
	"github.com/harissfx/AbsensiESP32/internal/model"
)

// Call is a prepared command. Run performs the network request and may be
// executed off the event loop; the result goes back through Finish.
type Call struct {
	Op     string
	Target command.Target
	User   model.User
	Name   string

	commands Commands
}

// Run sends the request.
func (c Call) Run(ctx context.Context) error {
	switch c.Op {
	case command.OpRename:
		return c.commands.Rename(ctx, c.Target, c.Name)
	case command.OpDelete:
		return c.commands.Delete(ctx, c.Target)
	default:
		return fmt.Errorf("unknown call %q", c.Op)
	}
}

// Resolve finds the current row of uid.
func (s *Session) Resolve(uid string) (command.Target, model.User, error) {
	i := s.store.IndexOf(uid)
	if i < 0 {
		return command.Target{}, model.User{}, fmt.Errorf("%w: %s", ErrUnknownUser, uid)
	}
	u, _ := s.store.UserAt(i)
	return command.Target{Index: i, UID: uid}, u, nil
}

// BeginRename validates the name, resolves uid to its current row and marks
// the row pending.
func (s *Session) BeginRename(uid, name string) (Call, error) {
	if err := command.ValidateName(name); err != nil {
		return Call{}, err
	}
	return s.begin(command.OpRename, uid, command.NormalizeName(name))
}

// BeginDelete resolves uid to its current row and marks the row pending.
// The operator must already have confirmed.
func (s *Session) BeginDelete(uid string) (Call, error) {
	return s.begin(command.OpDelete, uid, "")
}

func (s *Session) begin(op, uid, name string) (Call, error) {
	if s.pending[uid] {
		return Call{}, ErrPending
	}
	target, user, err := s.Resolve(uid)
	if err != nil {
		return Call{}, err
	}
	s.pending[uid] = true
	return Call{Op: op, Target: target, User: user, Name: name, commands: s.commands}, nil
}

// Finish clears the pending marker of c and returns the notice to show.
// The user list itself only changes when the device pushes it.
func (s *Session) Finish(c Call, err error) Notice {
	delete(s.pending, c.Target.UID)
	return NoticeFor(c, err)
}

// Rename runs a rename to completion on the calling goroutine.
func (s *Session) Rename(ctx context.Context, uid, name string) (Notice, error) {
	c, err := s.BeginRename(uid, name)
	if err != nil {
		return RefusalNotice(err), err
	}
	err = c.Run(ctx)
	return s.Finish(c, err), err
}

// Delete runs a delete to completion on the calling goroutine.
func (s *Session) Delete(ctx context.Context, uid string) (Notice, error) {
	c, err := s.BeginDelete(uid)
	if err != nil {
		return RefusalNotice(err), err
	}
	err = c.Run(ctx)
	return s.Finish(c, err), err
}

// =============================================================================
// NOTICES
// =============================================================================

// NoticeFor words the result of a finished call.
func NoticeFor(c Call, err error) Notice {
	if err == nil {
		if c.Op == command.OpDelete {
			return Notice{Text: c.User.Name + " deleted", OK: true}
		}
		return Notice{Text: "Name saved", OK: true}
	}
	switch {
	case command.IsNetwork(err):
		return Notice{Text: "Connection failed"}
	case command.IsValidation(err):
		return RefusalNotice(err)
	case c.Op == command.OpDelete:
		return Notice{Text: "Delete failed"}
	default:
		return Notice{Text: "Saving name failed"}
	}
}

// RefusalNotice words an error raised before any request was sent.
func RefusalNotice(err error) Notice {
	switch {
	case errors.Is(err, command.ErrEmptyName):
		return Notice{Text: "Name must not be empty"}
	case errors.Is(err, command.ErrNameTooLong):
		return Notice{Text: fmt.Sprintf("Name is limited to %d characters", model.MaxNameLength)}
	case errors.Is(err, ErrUnknownUser):
		return Notice{Text: "User is no longer on the device"}
	case errors.Is(err, ErrPending):
		return Notice{Text: "Still waiting for the device"}
	default:
		return Notice{Text: err.Error()}
	}
}
