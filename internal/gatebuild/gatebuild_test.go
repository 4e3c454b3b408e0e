package gatebuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benthomasson/ftl-go/internal/module"
	"github.com/stretchr/testify/require"
)

func TestWriteScratchTreeLaysOutExpectedFiles(t *testing.T) {
	scratchDir := t.TempDir()
	desc := &module.Descriptor{
		Name:  "argtest",
		Path:  filepath.Join(t.TempDir(), "argtest.py"),
		Bytes: []byte("print('hi')\n"),
		Style: module.StyleOldStyle,
	}

	opts := Options{
		Interpreter: "/usr/bin/python3",
		RepoDir:     "/repo",
		Deps:        []string{"requests"},
	}
	require.NoError(t, writeScratchTree(scratchDir, opts, []*module.Descriptor{desc}))

	goMod, err := os.ReadFile(filepath.Join(scratchDir, "go.mod"))
	require.NoError(t, err)
	require.Contains(t, string(goMod), "replace "+ModuleRoot+" => /repo")

	mainSrc, err := os.ReadFile(filepath.Join(scratchDir, "ftlgate", "main.go"))
	require.NoError(t, err)
	require.Contains(t, string(mainSrc), "go:embed modules")
	require.Contains(t, string(mainSrc), "go:embed pydeps")
	require.Contains(t, string(mainSrc), "/usr/bin/python3")

	moduleBytes, err := os.ReadFile(filepath.Join(scratchDir, "ftlgate", "modules", "argtest.py"))
	require.NoError(t, err)
	require.Equal(t, "print('hi')\n", string(moduleBytes))

	_, err = os.Stat(filepath.Join(scratchDir, "ftlgate", "pydeps"))
	require.NoError(t, err)
}

func TestWriteScratchTreeNoDepsOmitsEmbed(t *testing.T) {
	scratchDir := t.TempDir()
	opts := Options{Interpreter: "/usr/bin/python3", RepoDir: "/repo"}
	require.NoError(t, writeScratchTree(scratchDir, opts, nil))

	mainSrc, err := os.ReadFile(filepath.Join(scratchDir, "ftlgate", "main.go"))
	require.NoError(t, err)
	require.NotContains(t, string(mainSrc), "pydepsFS")

	_, err = os.Stat(filepath.Join(scratchDir, "ftlgate", "modules", ".keep"))
	require.NoError(t, err)
}

func TestNormalizeInterpStripsTrailingSeparator(t *testing.T) {
	require.Equal(t, normalizeInterp("/usr/bin/python3"), normalizeInterp("/usr/bin/python3/"))
}

func TestArtifactHashIsPositionalNotSorted(t *testing.T) {
	a := &module.Descriptor{Name: "alpha", Bytes: []byte("a")}
	b := &module.Descriptor{Name: "beta", Bytes: []byte("b")}

	forward := artifactHash([]*module.Descriptor{a, b}, []string{"/mod/1", "/mod/2"}, []string{"requests", "pyyaml"}, "/usr/bin/python3", "amd64")
	reversedModules := artifactHash([]*module.Descriptor{b, a}, []string{"/mod/1", "/mod/2"}, []string{"requests", "pyyaml"}, "/usr/bin/python3", "amd64")
	reversedDirs := artifactHash([]*module.Descriptor{a, b}, []string{"/mod/2", "/mod/1"}, []string{"requests", "pyyaml"}, "/usr/bin/python3", "amd64")
	reversedDeps := artifactHash([]*module.Descriptor{a, b}, []string{"/mod/1", "/mod/2"}, []string{"pyyaml", "requests"}, "/usr/bin/python3", "amd64")

	require.NotEqual(t, forward, reversedModules, "permuting module order must change the hash")
	require.NotEqual(t, forward, reversedDirs, "permuting module-dir order must change the hash")
	require.NotEqual(t, forward, reversedDeps, "permuting dep order must change the hash")
}

func TestArtifactHashDeterministic(t *testing.T) {
	a := &module.Descriptor{Name: "alpha", Bytes: []byte("a")}
	h1 := artifactHash([]*module.Descriptor{a}, []string{"/mod"}, []string{"requests"}, "/usr/bin/python3", "amd64")
	h2 := artifactHash([]*module.Descriptor{a}, []string{"/mod"}, []string{"requests"}, "/usr/bin/python3", "amd64")
	require.Equal(t, h1, h2)
}
