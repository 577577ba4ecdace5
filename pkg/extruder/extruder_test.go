package extruder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexIDRoundTrip(t *testing.T) {
	for i := Index(0); i < 8; i++ {
		id := i.ID()
		assert.Equal(t, ID(i+1), id)

		back, ok := id.Index()
		require.True(t, ok)
		assert.Equal(t, i, back)
	}
}

func TestIDWithoutIndex(t *testing.T) {
	_, ok := NoID.Index()
	assert.False(t, ok)

	_, ok = ID(-3).Index()
	assert.False(t, ok)
}

func TestIndexValid(t *testing.T) {
	assert.True(t, Index(0).Valid(1))
	assert.True(t, Index(2).Valid(3))
	assert.False(t, Index(3).Valid(3))
	assert.False(t, Index(-1).Valid(3))
	assert.False(t, Index(0).Valid(0))
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		in      string
		want    Index
		wantErr bool
	}{
		{"1", 0, false},
		{" 3 ", 2, false},
		{"T0", 0, false},
		{"t4", 4, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"abc", 0, true},
		{"Tx", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseIndex(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseIndex(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseIndex(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseIndex(%q)", tt.in)
	}
}

func TestIndexString(t *testing.T) {
	assert.Equal(t, "T0", Index(0).String())
	assert.Equal(t, "T3", Index(3).String())
}
