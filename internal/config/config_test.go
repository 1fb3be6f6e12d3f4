package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	c := Default()
	c.Output.Format = FormatJSON
	c.Output.ShowOffsets = false
	c.Log.Level = "debug"
	c.Emit.ClassName = "demo/Greeter"
	c.Emit.Lines = []string{"hi", "quote \" inside"}
	require.NoError(t, c.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# 输出格式")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, c, loaded)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[output]\nformat = \"json\"\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, FormatJSON, c.Output.Format)
	require.True(t, c.Output.ShowOffsets)
	require.Equal(t, "warn", c.Log.Level)
	require.Equal(t, "demo/Hello", c.Emit.ClassName)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[output\n"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
}

func TestValidateAggregates(t *testing.T) {
	c := Default()
	c.Output.Format = "xml"
	c.Log.Level = "loud"
	c.Emit.ClassName = "java.lang.String"

	err := c.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 3)
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, Default().Save(filepath.Join(root, ConfigFileName)))

	want, err := filepath.Abs(filepath.Join(root, ConfigFileName))
	require.NoError(t, err)
	require.Equal(t, want, Find(nested))
}
