package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryExactMatch(t *testing.T) {
	r := NewRegistry()
	r.Register("extruder_colour", StringsFactory)

	if r.GetFactory("extruder_colour") == nil {
		t.Fatal("expected factory for 'extruder_colour'")
	}
	if r.HasFactory("layer_height") {
		t.Fatal("expected no factory for 'layer_height'")
	}
}

func TestDefaultRegistryKnowsPerExtruderOptions(t *testing.T) {
	r := DefaultRegistry()
	for _, key := range []string{"extruder_colour", "temperature", "cooling", WipingVolumesExtruders} {
		assert.True(t, r.HasFactory(key), key)
	}
	assert.False(t, r.HasFactory(WipingVolumesMatrix))

	// tool geometry belongs to the physical extruder, not to the filament
	tools := ToolRegistry()
	for _, key := range []string{NozzleDiameter, "extruder_offset", "retract_length", "wipe"} {
		assert.False(t, r.HasFactory(key), key)
		assert.True(t, tools.HasFactory(key), key)
	}
	for _, key := range tools.RegisteredNames() {
		assert.False(t, r.HasFactory(key), "%s registered as both filament and tool option", key)
	}

	names := r.RegisteredNames()
	assert.IsIncreasing(t, names)
}

func TestRegistryLoadVectors(t *testing.T) {
	cfg, err := LoadString(samplePrintConfig)
	require.NoError(t, err)

	vectors, err := DefaultRegistry().LoadVectors(cfg.Root())
	require.NoError(t, err)

	keys := make([]string, len(vectors))
	for i, v := range vectors {
		keys[i] = v.Key()
		assert.Equal(t, 3, v.Len(), v.Key())
	}
	assert.Equal(t, []string{"extruder_colour", "filament_settings_id", "temperature"}, keys)

	tools, err := ToolRegistry().LoadVectors(cfg.Root())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, NozzleDiameter, tools[0].Key())
}

func TestRegistryLoadVectorsError(t *testing.T) {
	cfg, err := LoadString("temperature = 215,hot\n")
	require.NoError(t, err)

	_, err = DefaultRegistry().LoadVectors(cfg.Root())
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "temperature", cerr.Option)
}
