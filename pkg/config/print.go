package config

import (
	"filament-swap/pkg/wipe"
)

// Option names with a fixed meaning.
const (
	// NozzleDiameter has one entry per extruder and defines the extruder count.
	NozzleDiameter = "nozzle_diameter"
	// WipingVolumesMatrix is the flattened N×N purge matrix.
	WipingVolumesMatrix = "wiping_volumes_matrix"
)

// PrintConfig is a typed view of the flat print configuration.
type PrintConfig struct {
	cfg      *Config
	registry *Registry
	tools    *Registry
}

// NewPrintConfig wraps cfg. A nil registry selects DefaultRegistry.
func NewPrintConfig(cfg *Config, registry *Registry) *PrintConfig {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &PrintConfig{cfg: cfg, registry: registry, tools: ToolRegistry()}
}

// Config returns the underlying config.
func (p *PrintConfig) Config() *Config {
	return p.cfg
}

// ExtruderCount returns the number of extruders, taken from nozzle_diameter.
func (p *PrintConfig) ExtruderCount() (int, error) {
	diameters, err := p.cfg.Root().GetFloatList(NozzleDiameter, ",")
	if err != nil {
		return 0, err
	}
	if len(diameters) == 0 {
		return 0, ErrInvalidValue(RootSection, NozzleDiameter, "", "at least one extruder")
	}
	return len(diameters), nil
}

// Vectors parses the swappable per-extruder options present in the config.
func (p *PrintConfig) Vectors() ([]Vector, error) {
	return p.registry.LoadVectors(p.cfg.Root())
}

// ToolVectors parses the per-extruder options that belong to the physical
// extruders. A swap leaves them in place.
func (p *PrintConfig) ToolVectors() ([]Vector, error) {
	return p.tools.LoadVectors(p.cfg.Root())
}

// WipeMatrix returns the purge matrix declared as count×count. It returns
// nil when the config has no wiping_volumes_matrix.
func (p *PrintConfig) WipeMatrix(count int) (*wipe.Matrix, error) {
	root := p.cfg.Root()
	if !root.HasOption(WipingVolumesMatrix) {
		return nil, nil
	}
	values, err := root.GetFloatList(WipingVolumesMatrix, ",")
	if err != nil {
		return nil, err
	}
	return wipe.NewMatrix(count, values), nil
}

// OptionWriter stores raw option values.
type OptionWriter interface {
	SetOption(section, option, value string) error
}

// Store writes vectors and the matrix back into the root section through w.
func (p *PrintConfig) Store(w OptionWriter, vectors []Vector, matrix *wipe.Matrix) error {
	for _, v := range vectors {
		if err := w.SetOption(RootSection, v.Key(), v.Serialize()); err != nil {
			return err
		}
	}
	if matrix != nil {
		return w.SetOption(RootSection, WipingVolumesMatrix, formatFloats(matrix.Values()))
	}
	return nil
}
