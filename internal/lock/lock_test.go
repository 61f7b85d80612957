package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireFileExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corewm.lock")

	l1, err := AcquireFile(path)
	require.NoError(t, err)
	defer l1.Close()

	_, err = AcquireFile(path)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestAcquireFileReleasedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corewm.lock")

	l1, err := AcquireFile(path)
	require.NoError(t, err)
	require.NoError(t, l1.Close())

	l2, err := AcquireFile(path)
	require.NoError(t, err)
	defer l2.Close()
}

func TestCloseNilLockIsNoop(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Close())
}
