package main

import (
	"encoding/json"
	"fmt"

	"github.com/benthomasson/ftl-go/internal/inventory"
	"github.com/benthomasson/ftl-go/internal/scheduler"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		inventoryPath string
		moduleDirs    []string
		argsJSON      string
		repoDir       string
		moduleName    string
		ftlModuleName string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a module against every host in the inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (moduleName == "") == (ftlModuleName == "") {
				return fmt.Errorf("exactly one of --module or --ftl-module is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			inv, err := inventory.Load(inventoryPath)
			if err != nil {
				return err
			}

			var moduleArgs map[string]any
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &moduleArgs); err != nil {
					return fmt.Errorf("parse --args: %w", err)
				}
			}

			s := scheduler.New(cfg, moduleDirs, repoDir)

			var results map[string]any
			if ftlModuleName != "" {
				results, err = s.RunFTLModule(inv.Hosts(), ftlModuleName, moduleArgs)
			} else {
				results, err = s.RunModule(inv.Hosts(), moduleName, moduleArgs)
			}
			if err != nil {
				return err
			}

			if failed := printResults(results); failed > 0 {
				return &hostFailureError{count: failed}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inventoryPath, "inventory", "i", "", "Path to the inventory YAML file")
	cmd.Flags().StringVar(&moduleName, "module", "", "Module name to run via the subprocess calling conventions")
	cmd.Flags().StringVar(&ftlModuleName, "ftl-module", "", "Module name to run via the FTL-native (Go plugin) calling convention")
	cmd.Flags().StringArrayVarP(&moduleDirs, "module-dir", "m", nil, "Module search directory (repeatable, precedence order)")
	cmd.Flags().StringVarP(&argsJSON, "args", "a", "", "Module arguments as a JSON object")
	cmd.Flags().StringVar(&repoDir, "repo-dir", ".", "Path to this module's own checkout, for gate builds")
	cmd.MarkFlagRequired("inventory")

	return cmd
}
