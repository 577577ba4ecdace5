// Package model holds the extruder assignments of the objects on the plate.
//
// Assignments use 1-based extruder IDs; 0 means the object (or volume)
// inherits the default extruder.
package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"filament-swap/pkg/extruder"
)

// Volume is a part of an object with its own extruder.
type Volume struct {
	Name     string `json:"name" validate:"required"`
	Extruder int    `json:"extruder" validate:"gte=0"`
}

// Object is a model object on the plate.
type Object struct {
	Name     string   `json:"name" validate:"required"`
	Extruder int      `json:"extruder" validate:"gte=0"`
	Volumes  []Volume `json:"volumes,omitempty" validate:"dive"`
}

func swapRef(ref *int, a, b int) bool {
	switch *ref {
	case a:
		*ref = b
		return true
	case b:
		*ref = a
		return true
	}
	return false
}

// SwapExtruders remaps assignments between extruders a and b on every
// object and volume. It returns the number of assignments changed.
func SwapExtruders(objects []Object, a, b extruder.Index) int {
	ida, idb := int(a.ID()), int(b.ID())
	if ida == idb {
		return 0
	}
	changed := 0
	for i := range objects {
		if swapRef(&objects[i].Extruder, ida, idb) {
			changed++
		}
		for j := range objects[i].Volumes {
			if swapRef(&objects[i].Volumes[j].Extruder, ida, idb) {
				changed++
			}
		}
	}
	return changed
}

var validate = validator.New()

// Validate checks every object and that no assignment exceeds the extruder
// count.
func Validate(objects []Object, extruderCount int) error {
	for _, obj := range objects {
		if err := validate.Struct(obj); err != nil {
			return fmt.Errorf("object %q: %w", obj.Name, err)
		}
		if obj.Extruder > extruderCount {
			return fmt.Errorf("object %q: extruder %d exceeds extruder count %d", obj.Name, obj.Extruder, extruderCount)
		}
		for _, vol := range obj.Volumes {
			if vol.Extruder > extruderCount {
				return fmt.Errorf("object %q volume %q: extruder %d exceeds extruder count %d", obj.Name, vol.Name, vol.Extruder, extruderCount)
			}
		}
	}
	return nil
}
