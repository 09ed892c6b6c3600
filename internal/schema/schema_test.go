package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchemaFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileRegistersSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeSchemaFile(t, dir, "door.toml", `
name = "door"
required = ["transform"]

[defaults.transform]
position = [0, 0, 0]

[defaults.door]
open_angle = 90
locked = false
`)

	r := NewRegistry()
	require.NoError(t, r.LoadFile(path))

	schema, ok := r.Lookup("door")
	require.True(t, ok)
	assert.Equal(t, []string{"transform"}, schema.Required())

	def, ok := schema.Default("door")
	require.True(t, ok)
	table, isTable := def.Table()
	require.True(t, isTable)

	angle, ok := table.Get("open_angle")
	require.True(t, ok)
	angleFloat, _ := angle.Float()
	assert.Equal(t, 90.0, angleFloat)

	locked, ok := table.Get("locked")
	require.True(t, ok)
	lockedBool, _ := locked.Bool()
	assert.False(t, lockedBool)
}

func TestLoadFileMissingNameFails(t *testing.T) {
	dir := t.TempDir()
	path := writeSchemaFile(t, dir, "bad.toml", `required = ["transform"]`)

	r := NewRegistry()
	err := r.LoadFile(path)
	require.Error(t, err)
}

func TestLoadDirLoadsAllAndReportsPerFileErrors(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "door.toml", `name = "door"`)
	writeSchemaFile(t, dir, "handle.toml", `name = "handle"`)
	writeSchemaFile(t, dir, "broken.toml", `not valid toml = = =`)

	r := NewRegistry()
	errs := r.LoadDir(dir)
	assert.Len(t, errs, 1)

	_, ok := r.Lookup("door")
	assert.True(t, ok)
	_, ok = r.Lookup("handle")
	assert.True(t, ok)

	assert.Equal(t, []string{"door", "handle"}, r.Names())
}
