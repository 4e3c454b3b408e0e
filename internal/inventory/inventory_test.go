package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAndFlatten(t *testing.T) {
	doc := `
web:
  vars:
    ansible_user: deploy
  hosts:
    web1:
      ansible_host: 10.0.0.1
    web2:
      ansible_host: 10.0.0.2
      ansible_user: override
local:
  hosts:
    localhost:
      ansible_connection: local
`
	path := filepath.Join(t.TempDir(), "inventory.yml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	inv, err := Load(path)
	require.NoError(t, err)

	hosts := inv.Hosts()
	require.Len(t, hosts, 3)
	require.Equal(t, "deploy", hosts["web1"]["ansible_user"])
	require.Equal(t, "override", hosts["web2"]["ansible_user"], "host vars win over group vars")
	require.Equal(t, "local", hosts["localhost"]["ansible_connection"])
}
