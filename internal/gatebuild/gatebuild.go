// Package gatebuild packages a gate artifact for a target host: a
// small Go binary that embeds the module files a run needs and any pip
// dependencies they require, built against gatecore (spec.md §4.4).
//
// Since Go already produces self-contained static binaries, the gate
// artifact here is not an interpreter-launched zipapp but a
// cross-compiled executable generated from a scratch module. The
// scratch module's go.mod carries a replace directive back at this
// repo so its generated main.go can import the exported gatecore
// package without this repo needing to expose anything else publicly.
package gatebuild

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/benthomasson/ftl-go/internal/hashutil"
	"github.com/benthomasson/ftl-go/internal/module"
)

// Options describes one gate artifact to build.
type Options struct {
	// Interpreter is the target_interpreter baked into the artifact,
	// used to spawn script-style modules on the remote host.
	Interpreter string
	// LocalInterpreter runs pip to resolve Deps; it never runs on the
	// target host.
	LocalInterpreter string
	// ModuleNames are the module names this artifact must bundle.
	ModuleNames []string
	// ModuleDirs are the search directories ModuleNames resolve
	// against, in order (spec.md §3); included in the cache key so a
	// change in search path precedence invalidates the cache even when
	// the resolved bytes happen to match.
	ModuleDirs []string
	// Deps are pip package specifiers to install for modules that
	// import third-party packages.
	Deps []string
	// GOARCH selects the target CPU architecture; GOOS is always
	// linux (spec.md's Non-goals exclude Windows targets).
	GOARCH string
	// CacheDir is the artifact cache root (config.GateConfig.CacheDir).
	CacheDir string
	// RepoDir is the absolute path of this module's own checkout, so
	// the generated scratch module's go.mod can replace ModuleRoot
	// with a local filesystem reference instead of a version fetch.
	RepoDir string
}

// ModuleRoot is the repo-root-relative module path this package
// builds scratch trees against. It must match go.mod's module line.
const ModuleRoot = "github.com/benthomasson/ftl-go"

// Build resolves opts.ModuleNames against opts.ModuleDirs, computes a
// content hash over everything that affects the resulting binary, and
// returns the cached artifact's path if one already exists. Otherwise
// it generates a scratch Go module, runs pip (if Deps is non-empty)
// and go build, and atomically installs the result into the cache.
func Build(opts Options) (string, error) {
	descs := make([]*module.Descriptor, 0, len(opts.ModuleNames))
	for _, name := range opts.ModuleNames {
		desc, err := module.Find(name, opts.ModuleDirs)
		if err != nil {
			return "", fmt.Errorf("gatebuild: resolve module %q: %w", name, err)
		}
		descs = append(descs, desc)
	}

	hash := artifactHash(descs, opts.ModuleDirs, opts.Deps, opts.Interpreter, opts.GOARCH)

	if opts.CacheDir == "" {
		return "", fmt.Errorf("gatebuild: cache dir not set")
	}
	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("gatebuild: create cache dir: %w", err)
	}
	artifactPath := filepath.Join(opts.CacheDir, "gate-"+hash)
	if _, err := os.Stat(artifactPath); err == nil {
		return artifactPath, nil
	}

	scratchDir, err := os.MkdirTemp("", "ftl-gatebuild-")
	if err != nil {
		return "", fmt.Errorf("gatebuild: create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	if err := writeScratchTree(scratchDir, opts, descs); err != nil {
		return "", err
	}

	if len(opts.Deps) > 0 {
		if err := installDeps(scratchDir, opts.LocalInterpreter, opts.Deps); err != nil {
			return "", err
		}
	}

	tmpArtifact := filepath.Join(scratchDir, "gate-bin")
	if err := compile(scratchDir, tmpArtifact, opts.GOARCH); err != nil {
		return "", err
	}

	if err := installArtifact(tmpArtifact, artifactPath); err != nil {
		return "", err
	}
	return artifactPath, nil
}

// artifactHash computes the cache key over everything that affects the
// resulting binary. Positional, unsorted concatenation is part of the
// contract (spec.md §3, §8): permuting module names, module dirs, or
// deps must yield a different hash, since those lists encode
// precedence and ordering that can change which bytes actually end up
// in the artifact.
func artifactHash(descs []*module.Descriptor, moduleDirs, deps []string, interpreter, goarch string) string {
	hashFields := make([]string, 0, 2*len(descs)+len(moduleDirs)+len(deps)+2)
	for _, d := range descs {
		hashFields = append(hashFields, d.Name, hashutil.HashStrings(string(d.Bytes)))
	}
	hashFields = append(hashFields, moduleDirs...)
	hashFields = append(hashFields, deps...)
	hashFields = append(hashFields, normalizeInterp(interpreter), goarch)
	return hashutil.HashStrings(hashFields...)
}

// normalizeInterp cleans a path before it enters the cache key, so
// "/usr/bin/python3" and "/usr/bin/python3/" hash identically (spec.md
// §9 open question).
func normalizeInterp(path string) string {
	return filepath.Clean(path)
}

func installDeps(scratchDir, localInterp string, deps []string) error {
	depsDir := filepath.Join(scratchDir, "ftlgate", "pydeps")
	if err := os.MkdirAll(depsDir, 0o755); err != nil {
		return fmt.Errorf("gatebuild: create pydeps dir: %w", err)
	}
	args := append([]string{"-m", "pip", "install", "--target", depsDir}, deps...)
	cmd := exec.Command(localInterp, args...)
	cmd.Dir = scratchDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("gatebuild: pip install failed: %w\n%s", err, out)
	}
	return nil
}

func compile(scratchDir, outPath, goarch string) error {
	cmd := exec.Command("go", "build", "-o", outPath, "./ftlgate")
	cmd.Dir = scratchDir
	cmd.Env = append(os.Environ(), "GOOS=linux", "GOARCH="+goarch, "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("gatebuild: go build failed: %w\n%s", err, out)
	}
	return nil
}

func installArtifact(tmpPath, finalPath string) error {
	tmpInCacheDir := finalPath + ".tmp"
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("gatebuild: read built artifact: %w", err)
	}
	if err := os.WriteFile(tmpInCacheDir, data, 0o755); err != nil {
		return fmt.Errorf("gatebuild: stage artifact: %w", err)
	}
	if err := os.Rename(tmpInCacheDir, finalPath); err != nil {
		return fmt.Errorf("gatebuild: install artifact: %w", err)
	}
	return nil
}
