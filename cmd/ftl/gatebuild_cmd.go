package main

import (
	"fmt"

	"github.com/benthomasson/ftl-go/internal/gatebuild"
	"github.com/spf13/cobra"
)

func gateBuildCmd() *cobra.Command {
	var (
		moduleNames []string
		moduleDirs  []string
		deps        []string
		goarch      string
		repoDir     string
	)

	cmd := &cobra.Command{
		Use:   "gate-build",
		Short: "Build a gate artifact bundling the given modules and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			path, err := gatebuild.Build(gatebuild.Options{
				Interpreter:      cfg.Gate.DefaultInterp,
				LocalInterpreter: cfg.Gate.LocalInterp,
				ModuleNames:      moduleNames,
				ModuleDirs:       moduleDirs,
				Deps:             deps,
				GOARCH:           goarchOrDefault(goarch, cfg.Gate.GOARCH),
				CacheDir:         cfg.Gate.CacheDir,
				RepoDir:          repoDir,
			})
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&moduleNames, "module", nil, "Module name to bundle (repeatable)")
	cmd.Flags().StringArrayVarP(&moduleDirs, "module-dir", "m", nil, "Module search directory (repeatable, precedence order)")
	cmd.Flags().StringArrayVar(&deps, "dep", nil, "pip package specifier to bundle (repeatable)")
	cmd.Flags().StringVar(&goarch, "goarch", "", "Target architecture (default from config)")
	cmd.Flags().StringVar(&repoDir, "repo-dir", ".", "Path to this module's own checkout")
	cmd.MarkFlagRequired("module")

	return cmd
}

func goarchOrDefault(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}
