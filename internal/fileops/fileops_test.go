package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benthomasson/ftl-go/internal/config"
	"github.com/stretchr/testify/require"
)

func localVars() map[string]any {
	return map[string]any{"ansible_connection": "local"}
}

func TestMkdirLocalCreatesOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "path")
	sshCfg := config.DefaultConfig().SSH

	result, err := Mkdir(localVars(), sshCfg, 0, dir)
	require.NoError(t, err)
	require.Equal(t, true, result["changed"])

	result, err = Mkdir(localVars(), sshCfg, 0, dir)
	require.NoError(t, err)
	require.Equal(t, false, result["changed"], "mkdir on an existing dir reports unchanged")
}

func TestCopyLocalRoundTrips(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))
	dst := filepath.Join(t.TempDir(), "nested", "dst.txt")

	sshCfg := config.DefaultConfig().SSH
	result, err := Copy(localVars(), sshCfg, 0, src, dst)
	require.NoError(t, err)
	require.Equal(t, true, result["changed"])

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestTemplateLocalRenders(t *testing.T) {
	tmplPath := filepath.Join(t.TempDir(), "motd.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("hello {{.Name}}\n"), 0o644))
	dst := filepath.Join(t.TempDir(), "motd")

	sshCfg := config.DefaultConfig().SSH
	result, err := Template(localVars(), sshCfg, 0, tmplPath, dst, struct{ Name string }{Name: "world"})
	require.NoError(t, err)
	require.Equal(t, true, result["changed"])

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "hello world\n", string(data))
}
