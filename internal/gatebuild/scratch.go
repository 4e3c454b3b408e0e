package gatebuild

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/benthomasson/ftl-go/internal/module"
)

// writeScratchTree lays out a minimal Go module under scratchDir:
//
//	go.mod              replaces ModuleRoot with opts.RepoDir
//	ftlgate/main.go      go:embed's modules/ (and pydeps/, if present)
//	ftlgate/modules/...  copies of descs, under their original names
//
// go build ./ftlgate from within scratchDir produces the artifact.
func writeScratchTree(scratchDir string, opts Options, descs []*module.Descriptor) error {
	gateDir := filepath.Join(scratchDir, "ftlgate")
	modulesDir := filepath.Join(gateDir, "modules")
	if err := os.MkdirAll(modulesDir, 0o755); err != nil {
		return fmt.Errorf("gatebuild: create modules dir: %w", err)
	}

	for _, desc := range descs {
		dst := filepath.Join(modulesDir, filepath.Base(desc.Path))
		if err := os.WriteFile(dst, desc.Bytes, 0o644); err != nil {
			return fmt.Errorf("gatebuild: copy module %s: %w", desc.Name, err)
		}
	}
	// go:embed refuses an empty directory; modules is never empty in
	// practice (a gate with no modules has nothing to do), but a
	// placeholder keeps the generated directive valid either way.
	if len(descs) == 0 {
		if err := os.WriteFile(filepath.Join(modulesDir, ".keep"), nil, 0o644); err != nil {
			return fmt.Errorf("gatebuild: write modules placeholder: %w", err)
		}
	}

	hasDeps := len(opts.Deps) > 0
	if hasDeps {
		if err := os.MkdirAll(filepath.Join(gateDir, "pydeps"), 0o755); err != nil {
			return fmt.Errorf("gatebuild: create pydeps dir: %w", err)
		}
	}

	repoDir, err := filepath.Abs(opts.RepoDir)
	if err != nil {
		return fmt.Errorf("gatebuild: resolve repo dir: %w", err)
	}
	goModPath := filepath.Join(scratchDir, "go.mod")
	goMod := fmt.Sprintf("module ftlgatescratch\n\ngo 1.24.0\n\nrequire %s v0.0.0\n\nreplace %s => %s\n",
		ModuleRoot, ModuleRoot, repoDir)
	if err := os.WriteFile(goModPath, []byte(goMod), 0o644); err != nil {
		return fmt.Errorf("gatebuild: write go.mod: %w", err)
	}

	mainSrc, err := renderMain(opts, hasDeps)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(gateDir, "main.go"), []byte(mainSrc), 0o644); err != nil {
		return fmt.Errorf("gatebuild: write main.go: %w", err)
	}
	return nil
}

var mainTemplate = template.Must(template.New("gatemain").Parse(`// Code generated by gatebuild. DO NOT EDIT.
package main

import (
	"embed"
	"io/fs"
	"os"

	"{{.ModuleRoot}}/gatecore"
)

//go:embed modules
var modulesFS embed.FS
{{if .HasDeps}}
//go:embed pydeps
var pydepsFS embed.FS
{{end}}
func main() {
	modules, err := fs.Sub(modulesFS, "modules")
	if err != nil {
		panic(err)
	}
	cfg := gatecore.Config{
		Modules:     modules,
		Interpreter: {{printf "%q" .Interpreter}},
	}
	{{if .HasDeps}}
	deps, err := fs.Sub(pydepsFS, "pydeps")
	if err != nil {
		panic(err)
	}
	cfg.Deps = deps
	{{end}}
	os.Exit(gatecore.RunStdio(cfg))
}
`))

func renderMain(opts Options, hasDeps bool) (string, error) {
	var buf strings.Builder
	err := mainTemplate.Execute(&buf, struct {
		ModuleRoot  string
		Interpreter string
		HasDeps     bool
	}{
		ModuleRoot:  ModuleRoot,
		Interpreter: opts.Interpreter,
		HasDeps:     hasDeps,
	})
	return buf.String(), err
}
