package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	catalogFile = ""
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSearch(t *testing.T) {
	out, err := run(t, "search", "tech")
	require.NoError(t, err)
	assert.Contains(t, out, "Tech Solutions")
	assert.Contains(t, out, "1 result(s)")
}

func TestSearch_EmptyScopes(t *testing.T) {
	out, err := run(t, "search")
	require.NoError(t, err)
	assert.Contains(t, out, "0 result(s)")

	out, err = run(t, "search", "--scope", "home", "-d", "domain-insurance")
	require.NoError(t, err)
	assert.Contains(t, out, "Assur Plus")
	assert.Contains(t, out, "2 result(s)")
}

func TestScreens(t *testing.T) {
	out, err := run(t, "screens", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin\nhome\nsearch\nprofile\n", out)
}

func TestDomains(t *testing.T) {
	out, err := run(t, "domains")
	require.NoError(t, err)
	assert.Contains(t, out, "domain-credits")
}

func TestValidate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"domains":[],"enterprises":[{"id":"1","status":"ACTIVE","is_active":true}]}`), 0o600))
	out, err := run(t, "validate", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 1 enterprises, 0 domains")

	require.NoError(t, os.WriteFile(path, []byte(`{"enterprises":[{"id":"1","status":"BROKEN"}]}`), 0o600))
	_, err = run(t, "validate", "--catalog", path)
	assert.Error(t, err)
}
