// Extruder slot addressing
//
// Every structure keyed by extruder uses Index (0-based) internally. Timeline
// items and object assignments store the 1-based ID instead, where 0 means
// "no explicit extruder". Conversions happen only through this package.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package extruder

import (
	"fmt"
	"strconv"
	"strings"
)

// Index is the canonical 0-based extruder slot.
type Index int

// ID is the 1-based extruder reference stored in timeline items.
type ID int

// NoID marks an item that follows the current/default extruder.
const NoID ID = 0

// ID returns the 1-based reference for this slot.
func (i Index) ID() ID {
	return ID(i + 1)
}

// Valid reports whether the slot exists on a printer with count extruders.
func (i Index) Valid(count int) bool {
	return i >= 0 && int(i) < count
}

// String returns the tool name (T0, T1, ...).
func (i Index) String() string {
	return "T" + strconv.Itoa(int(i))
}

// Index converts the reference back to a slot. ok is false for NoID and
// negative values.
func (id ID) Index() (Index, bool) {
	if id <= NoID {
		return 0, false
	}
	return Index(id - 1), true
}

// ParseIndex parses a 1-based slot number as typed by a user ("1", "2", ...)
// or a tool name ("T0", "T1", ...).
func ParseIndex(s string) (Index, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(strings.ToUpper(s), "T"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid tool name %q", s)
		}
		return Index(n), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid extruder slot %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("extruder slot %d out of range, slots start at 1", n)
	}
	return Index(n - 1), nil
}
