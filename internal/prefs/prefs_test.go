package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	_, ok := m.Get(KeyDrawings)
	assert.False(t, ok)

	require.NoError(t, m.Set(KeyDrawings, "[]"))
	v, ok := m.Get(KeyDrawings)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "board.json")

	f, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(KeyColor, "#ff0000"))
	require.NoError(t, f.Set(KeyPenSize, "55"))

	again, err := OpenFile(path)
	require.NoError(t, err)
	v, ok := again.Get(KeyColor)
	assert.True(t, ok)
	assert.Equal(t, "#ff0000", v)
	v, _ = again.Get(KeyPenSize)
	assert.Equal(t, "55", v)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileCorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	f, err := OpenFile(path)
	require.NoError(t, err)
	_, ok := f.Get(KeyDrawings)
	assert.False(t, ok)

	require.NoError(t, f.Set(KeyDrawings, "[]"))
	again, err := OpenFile(path)
	require.NoError(t, err)
	v, _ := again.Get(KeyDrawings)
	assert.Equal(t, "[]", v)
}

func TestFileSetFailureKeepsOldValue(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	f, err := OpenFile(filepath.Join(dir, "board.json"))
	require.NoError(t, err)

	// A regular file where the directory should be makes every write fail.
	require.NoError(t, os.WriteFile(dir, nil, 0o644))

	assert.Error(t, f.Set(KeyColor, "#000000"))
	_, ok := f.Get(KeyColor)
	assert.False(t, ok)
}

func TestFyne(t *testing.T) {
	a := test.NewTempApp(t)
	p := NewFyne(a.Preferences())

	_, ok := p.Get(KeyColor)
	assert.False(t, ok)

	require.NoError(t, p.Set(KeyColor, "#00ff00"))
	v, ok := p.Get(KeyColor)
	assert.True(t, ok)
	assert.Equal(t, "#00ff00", v)

	require.NoError(t, p.Set(KeyDrawings, ""))
	v, ok = p.Get(KeyDrawings)
	assert.True(t, ok)
	assert.Empty(t, v)
}
