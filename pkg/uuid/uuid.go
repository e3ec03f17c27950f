// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the account identifiers.

Identifiers are UUID version 7 strings: opaque to clients, time-ordered in
the primary key index.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
func New() string {

	// entropy failure is an unrecoverable system-level error
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// Valid reports whether s parses as a UUID. Used to short-circuit lookups of
// ids that cannot exist.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
