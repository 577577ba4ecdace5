// Custom G-code timeline
//
// Items scheduled at a print height: color changes, tool changes, pauses and
// user G-code. Items reference extruders by their 1-based ID.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package customgcode

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"filament-swap/pkg/errors"
	"filament-swap/pkg/extruder"
)

// Type is the kind of a timeline item.
type Type int

const (
	ColorChange Type = iota + 1
	PausePrint
	ToolChange
	Template
	Custom
)

var typeNames = map[Type]string{
	ColorChange: "ColorChange",
	PausePrint:  "PausePrint",
	ToolChange:  "ToolChange",
	Template:    "Template",
	Custom:      "Custom",
}

// String returns the type name
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses a type name, case-insensitively.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown custom G-code type %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("unknown custom G-code type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Mode describes how extruders are used by the print.
type Mode int

const (
	SingleExtruder Mode = iota
	MultiAsSingle
	MultiExtruder
)

var modeNames = map[Mode]string{
	SingleExtruder: "SingleExtruder",
	MultiAsSingle:  "MultiAsSingle",
	MultiExtruder:  "MultiExtruder",
}

// String returns the mode name as written in project files.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("unknown extruder mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(b []byte) error {
	for mode, name := range modeNames {
		if strings.EqualFold(name, string(b)) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown extruder mode %q", string(b))
}

// Item is a single scheduled event.
type Item struct {
	PrintZ   float64 `json:"print_z" validate:"gte=0"`
	Type     Type    `json:"type" validate:"min=1,max=5"`
	Extruder int     `json:"extruder" validate:"gte=0"`
	Color    string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Extra    string  `json:"extra,omitempty"`
}

// ExtruderID returns the 1-based reference held by the item.
func (it Item) ExtruderID() extruder.ID {
	return extruder.ID(it.Extruder)
}

// Command returns the G-code the item stands for. Template items expand to
// the printer's template and are shown by name.
func (it Item) Command() string {
	switch it.Type {
	case ColorChange:
		return "M600"
	case PausePrint:
		return "M601"
	case ToolChange:
		if idx, ok := it.ExtruderID().Index(); ok {
			return idx.String()
		}
		return "T?"
	case Template:
		return "{" + it.Extra + "}"
	case Custom:
		return it.Extra
	}
	return ""
}

// Info is the timeline of a print.
type Info struct {
	Mode   Mode   `json:"mode"`
	Gcodes []Item `json:"gcodes"`
}

// SwapExtruders remaps every item that references a to b and every item that
// references b to a. Items are modified in place; order and length never
// change. It returns the number of items modified.
func SwapExtruders(items []Item, a, b int) int {
	if a == b {
		return 0
	}
	changed := 0
	for i := range items {
		switch items[i].Extruder {
		case a:
			items[i].Extruder = b
			changed++
		case b:
			items[i].Extruder = a
			changed++
		}
	}
	return changed
}

// SwapExtruders remaps references between two extruder slots.
func (info *Info) SwapExtruders(a, b extruder.Index) int {
	return SwapExtruders(info.Gcodes, int(a.ID()), int(b.ID()))
}

// CountReferences returns how many items reference the slot.
func (info *Info) CountReferences(idx extruder.Index) int {
	id := int(idx.ID())
	n := 0
	for _, it := range info.Gcodes {
		if it.Extruder == id {
			n++
		}
	}
	return n
}

var validate = validator.New()

// Validate checks every item and the chronological order of the timeline.
// References above extruderCount are reported when extruderCount > 0.
func (info *Info) Validate(extruderCount int) error {
	prev := 0.0
	for i, it := range info.Gcodes {
		if err := validate.Struct(it); err != nil {
			return errors.TimelineItemError(i, err.Error())
		}
		if extruderCount > 0 && it.Extruder > extruderCount {
			return errors.TimelineItemError(i, fmt.Sprintf("extruder %d exceeds extruder count %d", it.Extruder, extruderCount))
		}
		if i > 0 && it.PrintZ < prev {
			return errors.TimelineOrderError(i, prev, it.PrintZ)
		}
		prev = it.PrintZ
	}
	return nil
}
