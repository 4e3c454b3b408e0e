// Command ftl-gate-builder is a thin CLI wrapper around internal/gatebuild,
// useful for pre-warming the artifact cache outside of a full run (spec.md
// §4.4).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/benthomasson/ftl-go/internal/config"
	"github.com/benthomasson/ftl-go/internal/gatebuild"
)

func main() {
	var (
		modules    string
		moduleDirs string
		deps       string
		goarch     string
		repoDir    string
		configFile string
	)
	flag.StringVar(&modules, "modules", "", "comma-separated module names to bundle")
	flag.StringVar(&moduleDirs, "module-dirs", "", "comma-separated module search directories")
	flag.StringVar(&deps, "deps", "", "comma-separated pip package specifiers")
	flag.StringVar(&goarch, "goarch", "", "target architecture (default from config)")
	flag.StringVar(&repoDir, "repo-dir", ".", "path to this module's own checkout")
	flag.StringVar(&configFile, "config", "", "path to config file")
	flag.Parse()

	var cfg *config.Config
	if configFile != "" {
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)

	if goarch == "" {
		goarch = cfg.Gate.GOARCH
	}

	path, err := gatebuild.Build(gatebuild.Options{
		Interpreter:      cfg.Gate.DefaultInterp,
		LocalInterpreter: cfg.Gate.LocalInterp,
		ModuleNames:      splitNonEmpty(modules),
		ModuleDirs:       splitNonEmpty(moduleDirs),
		Deps:             splitNonEmpty(deps),
		GOARCH:           goarch,
		CacheDir:         cfg.Gate.CacheDir,
		RepoDir:          repoDir,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Println(path)
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
