// Package localexec runs a module on the driver's own host, against a
// temporary copy of the module file and the host's chosen interpreter
// (spec.md §4.3).
package localexec

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/benthomasson/ftl-go/internal/hostvars"
	"github.com/benthomasson/ftl-go/internal/module"
)

// Result is a module's JSON output, or a synthesized {"error": ...}
// mapping when the module's own output didn't parse as JSON.
type Result = map[string]any

// Run executes desc locally against args, resolving the interpreter
// from hostVars (falling back to defaultInterp), and returns the
// module's result mapping. It returns a non-nil error only when the
// module itself could not be prepared or launched — a module that ran
// but produced non-JSON output is reported as {"error": <raw output>},
// not as a Go error (spec.md §4.3).
func Run(hostVars map[string]any, desc *module.Descriptor, args map[string]any, defaultInterp string) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "ftl-local-")
	if err != nil {
		return nil, fmt.Errorf("localexec: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	modPath := filepath.Join(tmpDir, "module.py")
	if err := os.WriteFile(modPath, desc.Bytes, 0o755); err != nil {
		return nil, fmt.Errorf("localexec: copy module: %w", err)
	}

	interp := hostvars.String(hostVars, hostvars.KeyInterp, defaultInterp)
	argsPath := filepath.Join(tmpDir, "args")

	var cmd *exec.Cmd
	switch desc.Style {
	case module.StyleBinary:
		if err := module.WriteJSONArgs(argsPath, args); err != nil {
			return nil, err
		}
		cmd = exec.Command(modPath, argsPath)

	case module.StyleNewStyle:
		payload, err := json.Marshal(map[string]any{"ANSIBLE_MODULE_ARGS": args})
		if err != nil {
			return nil, fmt.Errorf("localexec: marshal module args: %w", err)
		}
		cmd = exec.Command(interp, modPath)
		cmd.Stdin = strings.NewReader(string(payload))

	case module.StyleWantJSON:
		if err := module.WriteJSONArgs(argsPath, args); err != nil {
			return nil, err
		}
		cmd = exec.Command(interp, modPath, argsPath)

	default: // module.StyleOldStyle
		if err := os.WriteFile(argsPath, []byte(module.JoinKV(args)), 0o644); err != nil {
			return nil, fmt.Errorf("localexec: write old-style args: %w", err)
		}
		cmd = exec.Command(interp, modPath, argsPath)
	}

	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		if _, exited := runErr.(*exec.ExitError); !exited {
			return nil, fmt.Errorf("localexec: run %s: %w", desc.Name, runErr)
		}
		// A non-zero exit still produces output worth parsing.
	}
	return parseResult(out), nil
}

func parseResult(out []byte) Result {
	var result Result
	if err := json.Unmarshal(out, &result); err != nil {
		return Result{"error": string(out)}
	}
	return result
}
