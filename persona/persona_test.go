package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersona_SystemComposesInOrder(t *testing.T) {
	p := New()
	p.Set("role", "You are a butler.")
	p.Set("tone", "Dry and formal.")
	p.Set("empty", "")

	assert.Equal(t, "You are a butler.\n\nDry and formal.", p.System())
	assert.Equal(t, []string{"role", "tone", "empty"}, p.Names())
}

func TestPersona_SetReplacesInPlace(t *testing.T) {
	p := New()
	p.Set("role", "old")
	p.Set("tone", "unchanged")
	p.Set("role", "new")

	assert.Equal(t, []string{"role", "tone"}, p.Names())
	assert.Equal(t, "new\n\nunchanged", p.System())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01-role.md"), []byte("You are a butler.\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02-tone.txt"), []byte("Dry and formal."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o600))

	p, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"01-role", "02-tone"}, p.Names(), "only text sections, in filename order")
	assert.Equal(t, "You are a butler.\n\nDry and formal.", p.System())

	section, ok := p.Get("01-role")
	require.True(t, ok)
	assert.Equal(t, "You are a butler.", section, "whitespace trimmed")
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Positive(t, p.Len())
	assert.NotEmpty(t, p.System())
}
