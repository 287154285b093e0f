package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecCmd_StopsFlagParsingAtCommand(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		wantContainer string
		wantArgs      []string
	}{
		{
			name:          "short flag with equals",
			args:          []string{"exec", "-c=web", "php", "artisan", "-v"},
			wantContainer: "web",
			wantArgs:      []string{"php", "artisan", "-v"},
		},
		{
			name:          "long flag",
			args:          []string{"exec", "--container=db", "echo", `\$HOME`},
			wantContainer: "db",
			wantArgs:      []string{"echo", `\$HOME`},
		},
		{
			name:     "host command",
			args:     []string{"exec", "echo", "No jobs", "-c=ignored"},
			wantArgs: []string{"echo", "No jobs", "-c=ignored"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, rest, err := newRootCmd().Find(tt.args)
			require.NoError(t, err)
			require.Equal(t, "exec", cmd.Name())

			require.NoError(t, cmd.ParseFlags(rest))
			assert.Equal(t, tt.wantContainer, cmd.Flag("container").Value.String())
			assert.Equal(t, tt.wantArgs, cmd.Flags().Args())
		})
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"process", "update", "set", "edit", "exec", "list", "watch", "config"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestSetCmd_RequiresTwoArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"set", "web"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}

func TestConfigInitCmd(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	root := newRootCmd()
	root.SetArgs([]string{"config", "init", "--dir", dir})
	root.SetOut(&out)
	require.NoError(t, root.Execute())

	path := filepath.Join(dir, "ws-cron.yaml")
	assert.Equal(t, "Configuration written to "+path+"\n", out.String())
	assert.FileExists(t, path)

	root = newRootCmd()
	root.SetArgs([]string{"config", "init", "--dir", dir})
	root.SetOut(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

func TestListCmd_EmptyCrontab(t *testing.T) {
	dir := t.TempDir()

	// A crontab(1) stand-in with nothing installed
	binary := filepath.Join(dir, "crontab")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\necho 'no crontab for user' >&2\nexit 1\n"), 0o755))

	configFile := filepath.Join(dir, "ws-cron.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(
		"data_dir: "+dir+"\n"+
			"crontab:\n  binary: "+binary+"\n"+
			"logger:\n  output: \"null\"\n",
	), 0o644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"--config", configFile, "list"})
	root.SetOut(&out)
	require.NoError(t, root.Execute())

	assert.Equal(t, "No managed jobs installed\n", out.String())
}
