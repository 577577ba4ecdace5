package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// VectorFactory parses the raw value of a per-extruder option.
type VectorFactory func(key, raw string) (Vector, error)

// Registry maps per-extruder option names to the factories that parse them.
// Options without a factory are not touched by a swap.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]VectorFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]VectorFactory),
	}
}

// Register adds a factory for an option name.
func (r *Registry) Register(key string, factory VectorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = factory
}

// GetFactory returns the factory for an option, or nil if not found.
func (r *Registry) GetFactory(key string) VectorFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factories[key]
}

// HasFactory checks if a factory is registered for the option.
func (r *Registry) HasFactory(key string) bool {
	return r.GetFactory(key) != nil
}

// RegisteredNames returns all registered option names, sorted.
func (r *Registry) RegisteredNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.factories)
	sort.Strings(names)
	return names
}

// LoadVectors parses every registered option present in the section. The
// result is sorted by option name.
func (r *Registry) LoadVectors(sec *Section) ([]Vector, error) {
	present := lo.Filter(r.RegisteredNames(), func(key string, _ int) bool {
		return sec.HasOption(key)
	})

	vectors := make([]Vector, 0, len(present))
	for _, key := range present {
		raw, _ := sec.Get(key)
		v, err := r.GetFactory(key)(key, raw)
		if err != nil {
			return nil, WrapError(sec.GetName(), key, err)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

// StringsFactory parses ';' separated, optionally quoted strings.
func StringsFactory(key, raw string) (Vector, error) {
	values, err := ParseStrings(raw)
	if err != nil {
		return nil, err
	}
	return NewStrings(key, values...), nil
}

// PointsFactory parses comma separated "XxY" points.
func PointsFactory(key, raw string) (Vector, error) {
	return NewPoints(key, splitComma(raw)...), nil
}

// FloatsFactory parses comma separated floats, stride values per extruder.
func FloatsFactory(stride int) VectorFactory {
	return func(key, raw string) (Vector, error) {
		values, err := parseFloats(raw)
		if err != nil {
			return nil, err
		}
		v := NewFloats(key, stride, values...)
		if !v.Complete() {
			return nil, fmt.Errorf("%d values do not split into groups of %d", len(values), stride)
		}
		return v, nil
	}
}

// IntsFactory parses comma separated integers.
func IntsFactory(key, raw string) (Vector, error) {
	values, err := parseInts(raw)
	if err != nil {
		return nil, err
	}
	return NewInts(key, values...), nil
}

// BoolsFactory parses comma separated 0/1 flags.
func BoolsFactory(key, raw string) (Vector, error) {
	values, err := parseBools(raw)
	if err != nil {
		return nil, err
	}
	return NewBools(key, values...), nil
}

// Per-extruder options of a slicer print config, grouped by value type.
//
// Filament options describe what is loaded in a slot and follow it on a
// swap. Tool options describe the physical extruder (nozzle, offset,
// retraction) and stay with their index.
var (
	stringOptions = []string{
		"extruder_colour",
		"filament_colour",
		"filament_settings_id",
		"filament_type",
		"filament_vendor",
		"filament_notes",
		"filament_ramming_parameters",
		"start_filament_gcode",
		"end_filament_gcode",
	}
	floatOptions = []string{
		"filament_diameter",
		"filament_density",
		"filament_cost",
		"filament_max_volumetric_speed",
		"extrusion_multiplier",
	}
	intOptions = []string{
		"temperature",
		"first_layer_temperature",
		"bed_temperature",
		"first_layer_bed_temperature",
		"min_fan_speed",
		"max_fan_speed",
		"bridge_fan_speed",
		"disable_fan_first_layers",
	}
	boolOptions = []string{
		"cooling",
		"fan_always_on",
	}

	toolPointOptions = []string{
		"extruder_offset",
	}
	toolFloatOptions = []string{
		NozzleDiameter,
		"retract_length",
		"retract_lift",
		"retract_speed",
		"retract_restart_extra",
		"retract_before_travel",
		"retract_length_toolchange",
		"retract_restart_extra_toolchange",
		"deretract_speed",
		"wipe_distance",
	}
	toolBoolOptions = []string{
		"retract_layer_change",
		"wipe",
	}
)

// WipingVolumesExtruders holds an unload and a load volume per extruder.
const WipingVolumesExtruders = "wiping_volumes_extruders"

// DefaultRegistry returns a registry with every known filament option.
// These are the options a swap exchanges.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, key := range stringOptions {
		r.Register(key, StringsFactory)
	}
	for _, key := range floatOptions {
		r.Register(key, FloatsFactory(1))
	}
	for _, key := range intOptions {
		r.Register(key, IntsFactory)
	}
	for _, key := range boolOptions {
		r.Register(key, BoolsFactory)
	}
	r.Register(WipingVolumesExtruders, FloatsFactory(2))
	return r
}

// ToolRegistry returns a registry with the per-extruder options of the
// printer itself. They are checked against the extruder count but never
// swapped.
func ToolRegistry() *Registry {
	r := NewRegistry()
	for _, key := range toolPointOptions {
		r.Register(key, PointsFactory)
	}
	for _, key := range toolFloatOptions {
		r.Register(key, FloatsFactory(1))
	}
	for _, key := range toolBoolOptions {
		r.Register(key, BoolsFactory)
	}
	return r
}
