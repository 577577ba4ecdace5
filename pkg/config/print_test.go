package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintConfigExtruderCount(t *testing.T) {
	cfg, err := LoadString(samplePrintConfig)
	require.NoError(t, err)

	n, err := NewPrintConfig(cfg, nil).ExtruderCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	empty, _ := LoadString("layer_height = 0.2\n")
	_, err = NewPrintConfig(empty, nil).ExtruderCount()
	assert.Error(t, err)

	blank, _ := LoadString("nozzle_diameter = \n")
	_, err = NewPrintConfig(blank, nil).ExtruderCount()
	assert.Error(t, err)
}

func TestPrintConfigWipeMatrix(t *testing.T) {
	cfg, err := LoadString(samplePrintConfig)
	require.NoError(t, err)
	pc := NewPrintConfig(cfg, nil)

	m, err := pc.WipeMatrix(3)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Size())
	assert.NoError(t, m.Validate(3))

	noMatrix, _ := LoadString("nozzle_diameter = 0.4\n")
	m, err = NewPrintConfig(noMatrix, nil).WipeMatrix(1)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestPrintConfigStore(t *testing.T) {
	cfg, err := LoadString(samplePrintConfig)
	require.NoError(t, err)
	pc := NewPrintConfig(cfg, nil)

	vectors, err := pc.Vectors()
	require.NoError(t, err)
	m, err := pc.WipeMatrix(3)
	require.NoError(t, err)

	for _, v := range vectors {
		v.Swap(0, 2)
	}
	m.Values()[1] = 99

	ac := NewAutosaveConfig(cfg, "")
	require.NoError(t, pc.Store(ac, vectors, m))

	colors, _ := cfg.Root().Get("extruder_colour")
	assert.Equal(t, "#0000FF;#00FF00;#FF0000", colors)
	ids, _ := cfg.Root().Get("filament_settings_id")
	assert.Equal(t, `"Generic PLA";"Prusament PETG";"Prusament PLA"`, ids)
	matrix, _ := cfg.Root().Get(WipingVolumesMatrix)
	assert.Equal(t, "0,99,140,140,0,140,140,140,0", matrix)

	assert.ElementsMatch(t,
		[]string{"extruder_colour", "filament_settings_id", "temperature", WipingVolumesMatrix},
		ac.GetModifiedOptions(RootSection))
}

func TestPrintConfigToolVectors(t *testing.T) {
	cfg, err := LoadString("nozzle_diameter = 0.4,0.6\nextruder_offset = 0x0,25x0\nretract_length = 0.8,1.2\nextruder_colour = #FF0000;#00FF00\n")
	require.NoError(t, err)
	pc := NewPrintConfig(cfg, nil)

	tools, err := pc.ToolVectors()
	require.NoError(t, err)
	keys := make([]string, len(tools))
	for i, v := range tools {
		keys[i] = v.Key()
	}
	assert.Equal(t, []string{"extruder_offset", NozzleDiameter, "retract_length"}, keys)

	vectors, err := pc.Vectors()
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, "extruder_colour", vectors[0].Key())
}
