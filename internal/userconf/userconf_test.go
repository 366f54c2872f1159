package userconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUsersFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "users.lua")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadUsersFile(t *testing.T) {
	path := writeUsersFile(t, `
directory = {
	users = {
		{ username = "alice", password_hash = "$2a$10$fakehash", roles = { "USER", "AUDITOR" } },
		{ username = "bob", password_hash = "$2a$10$otherhash", roles = { "USER" } },
	},
}
`)
	dir, err := Load(path)
	require.NoError(t, err)

	alice, ok := dir.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "$2a$10$fakehash", alice.PasswordHash)
	assert.Equal(t, []string{"USER", "AUDITOR"}, alice.Roles)

	_, ok = dir.Lookup("bob")
	assert.True(t, ok)
	_, ok = dir.Lookup("charlie")
	assert.False(t, ok)
}

func TestLoadRejectsMissingDirectoryTable(t *testing.T) {
	path := writeUsersFile(t, `answer = 42`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsEmptyUserList(t *testing.T) {
	path := writeUsersFile(t, `directory = { users = {} }`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsDuplicateUsernames(t *testing.T) {
	path := writeUsersFile(t, `
directory = {
	users = {
		{ username = "alice", password_hash = "a" },
		{ username = "alice", password_hash = "b" },
	},
}
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBrokenScript(t *testing.T) {
	path := writeUsersFile(t, `directory = {`)
	_, err := Load(path)
	require.Error(t, err)
}
