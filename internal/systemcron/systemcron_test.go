package systemcron

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCrontab writes a shell script behaving like crontab(1) against a
// file inside dir. It also records the path of every installed file.
func fakeCrontab(t *testing.T, dir string) string {
	t.Helper()
	script := `#!/bin/sh
state="` + dir + `/installed"
if [ "$1" = "-l" ]; then
  if [ ! -f "$state" ]; then
    echo "no crontab for test" >&2
    exit 1
  fi
  cat "$state"
  exit 0
fi
echo "$1" >> "` + dir + `/paths"
if grep -q FAIL "$1"; then
  echo "bad minute" >&2
  exit 2
fi
cp "$1" "$state"
`
	path := filepath.Join(dir, "crontab")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestCrontab_ListWithoutCrontab(t *testing.T) {
	dir := t.TempDir()
	c := New(fakeCrontab(t, dir))

	_, err := c.List(context.Background())
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Equal(t, "no crontab for test", cmdErr.Stderr)
}

func TestCrontab_InstallThenList(t *testing.T) {
	dir := t.TempDir()
	tmp := t.TempDir()
	c := New(fakeCrontab(t, dir), WithTempDir(tmp))

	text := "0 * * * * foo\n"
	require.NoError(t, c.Install(context.Background(), text))

	got, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, text, got)

	leftovers, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCrontab_InstallFailureRemovesFile(t *testing.T) {
	dir := t.TempDir()
	tmp := t.TempDir()
	c := New(fakeCrontab(t, dir), WithTempDir(tmp))

	require.NoError(t, c.Install(context.Background(), "1 * * * * keep\n"))

	err := c.Install(context.Background(), "FAIL\n")
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 2, cmdErr.ExitCode)

	leftovers, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	paths, err := os.ReadFile(filepath.Join(dir, "paths"))
	require.NoError(t, err)
	assert.Len(t, strings.Fields(string(paths)), 2)

	got, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1 * * * * keep\n", got)
}

func TestCrontab_MissingBinary(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope"))

	_, err := c.List(context.Background())
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, -1, cmdErr.ExitCode)
}

func TestNew_DefaultBinary(t *testing.T) {
	assert.Equal(t, DefaultBinary, New("").binary)
}
