package gatecore

import (
	"io/fs"
	"os"
	"path/filepath"
)

// materializeDeps unpacks an embedded pip dependency tree to a real
// temp directory, since PYTHONPATH must name a filesystem path and
// fs.FS values baked in via go:embed are not addressable that way.
// A nil deps tree (a gate built with no dependencies) is a no-op.
func materializeDeps(deps fs.FS) (string, func(), error) {
	noop := func() {}
	if deps == nil {
		return "", noop, nil
	}

	dir, err := os.MkdirTemp("", "ftl-deps-")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	err = fs.WalkDir(deps, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, path)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, readErr := fs.ReadFile(deps, path)
		if readErr != nil {
			return readErr
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		cleanup()
		return "", noop, err
	}
	return dir, cleanup, nil
}
