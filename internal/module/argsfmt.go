package module

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// JoinKV renders args as space-joined k=v pairs in a stable (sorted)
// key order, or the empty string when args is absent (spec.md §4.3
// OldStyle convention). Shared by localexec and gatecore so both
// executors agree on the same on-disk args format.
func JoinKV(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, " ")
}

// WriteJSONArgs marshals args as JSON and writes it to path, the
// convention shared by the Binary and WantJSON calling styles.
func WriteJSONArgs(path string, args map[string]any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("module: marshal args: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("module: write args file: %w", err)
	}
	return nil
}
