package notesfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), ".last-release-notes"))

	_, err := f.Contents()
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, f.Write("  \n\t\n"))
	_, err = f.Contents()
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, f.Write("\n**Bug Fixes**:\n- x (#1)\n\n"))
	got, err := f.Contents()
	require.NoError(t, err)
	assert.Equal(t, "**Bug Fixes**:\n- x (#1)", got)

	require.NoError(t, f.Delete())
	require.NoError(t, f.Delete())
	_, err = f.Contents()
	assert.ErrorIs(t, err, ErrEmpty)
}
