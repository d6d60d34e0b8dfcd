// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import "errors"

// Kind categorizes a command failure.
type Kind int

const (
	// KindValidation means the input was refused locally; nothing was sent.
	KindValidation Kind = iota
	// KindNetwork means the call never completed.
	KindNetwork
	// KindRejected means the device answered {"ok":false}.
	KindRejected
	// KindBadResponse means a non-2xx status or an undecodable body.
	KindBadResponse
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindRejected:
		return "rejected"
	case KindBadResponse:
		return "bad_response"
	default:
		return "unknown"
	}
}

// Error is returned by every failed command.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Sentinel validation causes.
var (
	ErrEmptyName   = errors.New("name is empty")
	ErrNameTooLong = errors.New("name is too long")
	ErrNoTarget    = errors.New("no user selected")
)

// KindOf returns the kind of a command error, or -1 when err is not one.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return -1
}

// IsValidation reports whether err was raised before any network call.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNetwork reports whether err means the call never completed.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsRejected reports whether the device refused the request.
func IsRejected(err error) bool { return KindOf(err) == KindRejected }

// IsBadResponse reports whether the device's reply could not be understood.
func IsBadResponse(err error) bool { return KindOf(err) == KindBadResponse }
