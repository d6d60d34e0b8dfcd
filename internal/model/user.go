// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// MaxNameLength is the longest user name, in characters, the device stores.
const MaxNameLength = 19

// DefaultCapacity is the number of user slots on the device.
const DefaultCapacity = 50

// User is an enrolled card holder. UID is assigned by the device and unique
// among active users; Name is operator editable.
type User struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// CloneUsers returns a copy of users that shares no backing array with it.
// A nil input yields an empty, non-nil slice.
func CloneUsers(users []User) []User {
	out := make([]User, len(users))
	copy(out, users)
	return out
}
