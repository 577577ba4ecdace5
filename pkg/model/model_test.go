package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filament-swap/pkg/extruder"
)

func plate() []Object {
	return []Object{
		{Name: "benchy", Extruder: 1, Volumes: []Volume{
			{Name: "hull", Extruder: 0},
			{Name: "chimney", Extruder: 2},
		}},
		{Name: "cube", Extruder: 3},
		{Name: "logo", Extruder: 2, Volumes: []Volume{{Name: "text", Extruder: 1}}},
	}
}

func TestSwapExtruders(t *testing.T) {
	objects := plate()

	n := SwapExtruders(objects, extruder.Index(0), extruder.Index(1))

	want := []Object{
		{Name: "benchy", Extruder: 2, Volumes: []Volume{
			{Name: "hull", Extruder: 0},
			{Name: "chimney", Extruder: 1},
		}},
		{Name: "cube", Extruder: 3},
		{Name: "logo", Extruder: 1, Volumes: []Volume{{Name: "text", Extruder: 2}}},
	}
	assert.Equal(t, 4, n)
	if diff := cmp.Diff(want, objects); diff != "" {
		t.Errorf("unexpected assignments (-want +got):\n%s", diff)
	}
}

func TestSwapExtrudersIdentity(t *testing.T) {
	objects := plate()
	assert.Zero(t, SwapExtruders(objects, 1, 1))
	assert.Equal(t, plate(), objects)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(plate(), 3))

	err := Validate(plate(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cube")

	err = Validate([]Object{{Name: "", Extruder: 1}}, 3)
	assert.Error(t, err)

	err = Validate([]Object{{Name: "x", Volumes: []Volume{{Name: "v", Extruder: 5}}}}, 3)
	assert.Error(t, err)
}
