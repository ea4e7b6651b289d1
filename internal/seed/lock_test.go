package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLock_AcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	lock := NewRunLock(dir)

	acquired, err := lock.TryLock()
	require.NoError(t, err)
	assert.True(t, acquired)

	require.NoError(t, lock.Unlock())
}

func TestRunLock_SecondAcquireFailsWhileHeld(t *testing.T) {
	dir := t.TempDir()
	first := NewRunLock(dir)
	second := NewRunLock(dir)

	acquired, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, acquired)
	defer first.Unlock()

	acquired, err = second.TryLock()
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestRunLock_UnlockWithoutLockIsSafe(t *testing.T) {
	lock := NewRunLock(t.TempDir())
	assert.NoError(t, lock.Unlock())
}
