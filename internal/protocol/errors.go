// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import "errors"

// DecodeErrorKind classifies why a frame was rejected.
type DecodeErrorKind int

const (
	// KindMalformed means the frame is not a JSON object.
	KindMalformed DecodeErrorKind = iota
	// KindMissingType means the object has no "type" field.
	KindMissingType
	// KindUnknownType means "type" names a message this client does not know.
	KindUnknownType
	// KindBadPayload means the type is known but its fields have the wrong shape.
	KindBadPayload
)

// String returns the label used in logs and metrics.
func (k DecodeErrorKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindMissingType:
		return "missing_type"
	case KindUnknownType:
		return "unknown_type"
	case KindBadPayload:
		return "bad_payload"
	default:
		return "unknown"
	}
}

// DecodeError is returned by Decode for frames that cannot be applied.
type DecodeError struct {
	Kind  DecodeErrorKind
	Type  string // value of the "type" field, if one was read
	Cause error
}

func (e *DecodeError) Error() string {
	msg := "protocol: " + e.Kind.String()
	if e.Type != "" {
		msg += " (type " + e.Type + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// IsDecodeError reports whether err is, or wraps, a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// ErrUnknownCommand is returned by Encode for commands the device does not accept.
var ErrUnknownCommand = errors.New("protocol: unknown command")
