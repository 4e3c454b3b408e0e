package main

import (
	"encoding/json"
	"fmt"

	"github.com/benthomasson/ftl-go/internal/fileops"
	"github.com/benthomasson/ftl-go/internal/inventory"
	"github.com/spf13/cobra"
)

func mkdirCmd() *cobra.Command {
	var inventoryPath string

	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory on every host in the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			inv, err := inventory.Load(inventoryPath)
			if err != nil {
				return err
			}

			results := make(map[string]any)
			failed := 0
			for host, hv := range inv.Hosts() {
				result, err := fileops.Mkdir(hv, cfg.SSH, cfg.Gate.ConnectTimeout, args[0])
				if err != nil {
					results[host] = map[string]any{"error": true, "msg": err.Error()}
					failed++
					continue
				}
				results[host] = result
			}

			encoded, _ := json.MarshalIndent(results, "", "  ")
			fmt.Println(string(encoded))
			if failed > 0 {
				return &hostFailureError{count: failed}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inventoryPath, "inventory", "i", "", "Path to the inventory YAML file")
	cmd.MarkFlagRequired("inventory")
	return cmd
}

func copyCmd() *cobra.Command {
	var (
		inventoryPath string
		from          bool
	)

	cmd := &cobra.Command{
		Use:   "copy <local-path> <remote-path>",
		Short: "Copy a file to (or, with --from, down from) every host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			inv, err := inventory.Load(inventoryPath)
			if err != nil {
				return err
			}

			results := make(map[string]any)
			failed := 0
			for host, hv := range inv.Hosts() {
				var result map[string]any
				var err error
				if from {
					result, err = fileops.CopyFrom(hv, cfg.SSH, cfg.Gate.ConnectTimeout, args[1], args[0])
				} else {
					result, err = fileops.Copy(hv, cfg.SSH, cfg.Gate.ConnectTimeout, args[0], args[1])
				}
				if err != nil {
					results[host] = map[string]any{"error": true, "msg": err.Error()}
					failed++
					continue
				}
				results[host] = result
			}

			encoded, _ := json.MarshalIndent(results, "", "  ")
			fmt.Println(string(encoded))
			if failed > 0 {
				return &hostFailureError{count: failed}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inventoryPath, "inventory", "i", "", "Path to the inventory YAML file")
	cmd.Flags().BoolVar(&from, "from", false, "Fetch <remote-path> down to <local-path> instead of uploading")
	cmd.MarkFlagRequired("inventory")
	return cmd
}

func templateCmd() *cobra.Command {
	var inventoryPath string

	cmd := &cobra.Command{
		Use:   "template <template-path> <remote-path>",
		Short: "Render a Go template and write it to every host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			inv, err := inventory.Load(inventoryPath)
			if err != nil {
				return err
			}

			results := make(map[string]any)
			failed := 0
			for host, hv := range inv.Hosts() {
				result, err := fileops.Template(hv, cfg.SSH, cfg.Gate.ConnectTimeout, args[0], args[1], hv)
				if err != nil {
					results[host] = map[string]any{"error": true, "msg": err.Error()}
					failed++
					continue
				}
				results[host] = result
			}

			encoded, _ := json.MarshalIndent(results, "", "  ")
			fmt.Println(string(encoded))
			if failed > 0 {
				return &hostFailureError{count: failed}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inventoryPath, "inventory", "i", "", "Path to the inventory YAML file")
	cmd.MarkFlagRequired("inventory")
	return cmd
}
