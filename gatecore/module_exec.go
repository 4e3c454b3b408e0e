package gatecore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/benthomasson/ftl-go/internal/ftlerr"
	"github.com/benthomasson/ftl-go/internal/module"
	"github.com/benthomasson/ftl-go/internal/wire"
)

type moduleRequest struct {
	ModuleName string         `json:"module_name"`
	ModuleArgs map[string]any `json:"module_args"`
	Module     string         `json:"module,omitempty"` // base64, present when inlined
}

// handleModule answers a Module{} frame: it resolves the module's
// bytes either from the inline base64 payload the driver sends on
// retry, or from this gate's own bundled copy, classifies it, spawns
// it, and replies ModuleResult{stdout, stderr} (spec.md §4.5, §4.6).
func handleModule(out io.Writer, cfg Config, depsDir string, body json.RawMessage) error {
	var req moduleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return wire.WriteBytes(out, "Error", map[string]any{"message": "invalid Module body: " + err.Error()})
	}

	data, err := resolveModuleBytes(cfg.Modules, req)
	if err != nil {
		return wire.WriteBytes(out, "ModuleNotFound", map[string]any{
			"message": fmt.Sprintf("module %q not bundled in this gate", req.ModuleName),
		})
	}

	style := module.Classify(data)
	stdout, stderr, err := execModule(data, style, req.ModuleArgs, cfg.Interpreter, depsDir)
	if err != nil {
		return wire.WriteBytes(out, "GateSystemError", map[string]any{
			"message": err.Error(),
		})
	}
	return wire.WriteBytes(out, "ModuleResult", map[string]any{"stdout": stdout, "stderr": stderr})
}

func resolveModuleBytes(modules fs.FS, req moduleRequest) ([]byte, error) {
	if req.Module != "" {
		return base64.StdEncoding.DecodeString(req.Module)
	}
	if modules == nil {
		return nil, fmt.Errorf("gatecore: no bundled modules: %w", ftlerr.ErrModuleNotFoundInGate)
	}
	for _, candidate := range []string{req.ModuleName, req.ModuleName + ".py"} {
		if data, err := fs.ReadFile(modules, candidate); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("gatecore: %q not bundled: %w", req.ModuleName, ftlerr.ErrModuleNotFoundInGate)
}

// execModule spawns data against the style's calling convention in a
// scratch temp directory that is always removed, mirroring
// internal/localexec's approach but augmenting NewStyle's environment
// with PYTHONPATH so modules can import this gate's bundled pip
// dependencies (spec.md §4.5).
func execModule(data []byte, style module.Style, args map[string]any, interpreter, depsDir string) (string, string, error) {
	tmpDir, err := os.MkdirTemp("", "ftl-gate-run-")
	if err != nil {
		return "", "", err
	}
	defer os.RemoveAll(tmpDir)

	modPath := filepath.Join(tmpDir, "module")
	if err := os.WriteFile(modPath, data, 0o644); err != nil {
		return "", "", err
	}
	argsPath := filepath.Join(tmpDir, "args")

	var cmd *exec.Cmd
	switch style {
	case module.StyleBinary:
		if err := os.Chmod(modPath, 0o755); err != nil {
			return "", "", err
		}
		if err := module.WriteJSONArgs(argsPath, args); err != nil {
			return "", "", err
		}
		cmd = exec.Command(modPath, argsPath)

	case module.StyleNewStyle:
		payload, err := json.Marshal(map[string]any{"ANSIBLE_MODULE_ARGS": args})
		if err != nil {
			return "", "", err
		}
		cmd = exec.Command(interpreter, modPath)
		cmd.Stdin = bytes.NewReader(payload)
		if depsDir != "" {
			cmd.Env = append(os.Environ(), "PYTHONPATH="+depsDir)
		}

	case module.StyleWantJSON:
		if err := module.WriteJSONArgs(argsPath, args); err != nil {
			return "", "", err
		}
		cmd = exec.Command(interpreter, modPath, argsPath)

	default: // module.StyleOldStyle
		if err := os.WriteFile(argsPath, []byte(module.JoinKV(args)), 0o644); err != nil {
			return "", "", err
		}
		cmd = exec.Command(interpreter, modPath, argsPath)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	if runErr != nil {
		if _, exited := runErr.(*exec.ExitError); !exited {
			return "", "", runErr
		}
	}
	return stdout.String(), stderr.String(), nil
}
