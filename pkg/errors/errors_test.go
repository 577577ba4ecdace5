package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostErrorMessage(t *testing.T) {
	err := SwapVectorError("extruder_colour", 2, 3)
	assert.Equal(t, "[SWAP_VECTOR:extruder_colour] per-extruder option has 2 values, want 3", err.Error())

	wrapped := ProjectIOError("/tmp/x.ini", stderrors.New("disk full"))
	assert.Contains(t, wrapped.Error(), "PROJECT_IO")
	assert.Contains(t, wrapped.Error(), "disk full")
	assert.Equal(t, "/tmp/x.ini", wrapped.Context["path"])
}

func TestIsWalksWrappedChain(t *testing.T) {
	base := SwapIndexError(4, 3)
	outer := fmt.Errorf("swap T0/T4: %w", base)

	assert.True(t, Is(outer, ErrSwapIndex))
	assert.True(t, IsSwap(outer))
	assert.False(t, Is(outer, ErrSwapMatrix))
	assert.False(t, IsConfig(outer))
	assert.False(t, Is(stderrors.New("plain"), ErrSwapIndex))
	assert.False(t, Is(nil, ErrSwapIndex))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := ProjectLockError("/p/config.ini.lock", cause)

	require.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrProjectLock))
}

func TestConfigValidationError(t *testing.T) {
	cause := stderrors.New("invalid value 'hot', expected integer")
	err := ConfigValidationError("", "temperature", cause)

	assert.Equal(t, "[CONFIG_VALIDATION:temperature] invalid print config: invalid value 'hot', expected integer", err.Error())
	assert.True(t, IsConfig(fmt.Errorf("open: %w", err)))
	assert.False(t, IsSwap(err))
	require.ErrorIs(t, err, cause)
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("boom")
	require.NotNil(t, err)
	assert.Equal(t, ErrRuntime, err.Code)
	assert.Contains(t, err.Message, "boom")

	err = RecoverPanic(stderrors.New("bad"))
	assert.Equal(t, "bad", err.Message)

	func() {
		defer func() {
			err = RecoverPanic(recover())
		}()
		var s []int
		_ = s[3]
	}()
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "index out of range")
}
