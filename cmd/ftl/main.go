package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/benthomasson/ftl-go/internal/config"
	"github.com/benthomasson/ftl-go/internal/logging"
	"github.com/spf13/cobra"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "ftl",
		Short: "ftl runs automation modules across many hosts in parallel",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (optional, env vars override)")

	rootCmd.AddCommand(
		runCmd(),
		gateBuildCmd(),
		copyCmd(),
		mkdirCmd(),
		templateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)
	logging.SetLevelFromString(cfg.Logging.Level)
	logging.InitStructured(cfg.Logging.Format, cfg.Logging.Level)
	return cfg, nil
}

// exitCodeFor maps a top-level command failure to the exit codes the
// CLI surface promises: 0 success (handled by cobra itself before
// Execute returns an error), 1 a run that completed but reported a
// failed host, 2 everything else (bad arguments, config, fatal setup
// failure).
func exitCodeFor(err error) int {
	if _, ok := err.(*hostFailureError); ok {
		return 1
	}
	return 2
}

// hostFailureError marks a run that completed normally but left at
// least one host's result holding an error, distinguishing that case
// from a usage or setup failure for exit-code purposes.
type hostFailureError struct {
	count int
}

func (e *hostFailureError) Error() string {
	return fmt.Sprintf("%d host(s) failed", e.count)
}

func printResults(results map[string]any) int {
	encoded, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(encoded))

	failed := 0
	for _, v := range results {
		if r, ok := v.(map[string]any); ok {
			if errFlag, ok := r["error"]; ok {
				if b, ok := errFlag.(bool); ok && b {
					failed++
					continue
				}
			}
		}
	}
	return failed
}
