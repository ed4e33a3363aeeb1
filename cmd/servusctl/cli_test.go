package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{
		"list-sites",
		"create-site",
		"list-posts",
		"save-post",
		"delete-post",
		"create-note",
		"list-files",
		"upload-file",
		"delete-file",
	}
	got := map[string]bool{}
	for _, sub := range cmd.Commands() {
		got[sub.Name()] = true
	}
	for _, name := range want {
		assert.True(t, got[name], "missing subcommand %s", name)
	}
}

func TestRootCommandFlags(t *testing.T) {
	cmd := NewRootCmd()
	assert.NotNil(t, cmd.PersistentFlags().Lookup("api-url"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("plaintext"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
}

func TestSavePostRequiresFlags(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"save-post"})
	err := cmd.Execute()
	require.Error(t, err, "required flags must be enforced")
}

func TestNewClientRequiresSecret(t *testing.T) {
	t.Setenv("SERVUS_SECRET_KEY", "")
	_, err := newClient()
	assert.Error(t, err)
}

func TestNewClientFromEnvSecret(t *testing.T) {
	t.Setenv("SERVUS_SECRET_KEY", "0000000000000000000000000000000000000000000000000000000000000001")
	apiURL = "http://127.0.0.1:4884"
	c, err := newClient()
	require.NoError(t, err)
	assert.NotNil(t, c.Workspace())
}
