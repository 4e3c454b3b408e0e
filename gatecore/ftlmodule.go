package gatecore

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/benthomasson/ftl-go/internal/localexec"
	"github.com/benthomasson/ftl-go/internal/wire"
)

type ftlModuleRequest struct {
	ModuleName string         `json:"module_name"`
	Module     string         `json:"module"` // base64-encoded Go plugin
	ModuleArgs map[string]any `json:"module_args"`
}

// handleFTLModule answers an FTLModule{} frame: it decodes the inline
// plugin bytes the driver always sends for this path (FTL-native
// modules have no gate-side bundling concept), loads it in isolation,
// and replies FTLModuleResult{result} (spec.md §4.3, §4.5).
func handleFTLModule(out io.Writer, body json.RawMessage) error {
	var req ftlModuleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return wire.WriteBytes(out, "Error", map[string]any{"message": "invalid FTLModule body: " + err.Error()})
	}

	data, err := base64.StdEncoding.DecodeString(req.Module)
	if err != nil {
		return wire.WriteBytes(out, "Error", map[string]any{"message": "invalid base64 module: " + err.Error()})
	}

	tmpDir, err := os.MkdirTemp("", "ftl-gate-native-")
	if err != nil {
		return wire.WriteBytes(out, "GateSystemError", map[string]any{"message": err.Error()})
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, req.ModuleName+".so")
	if err := os.WriteFile(path, data, 0o755); err != nil {
		return wire.WriteBytes(out, "GateSystemError", map[string]any{"message": err.Error()})
	}

	result, err := localexec.RunNative(path, req.ModuleArgs)
	if err != nil {
		return wire.WriteBytes(out, "GateSystemError", map[string]any{"message": err.Error()})
	}
	return wire.WriteBytes(out, "FTLModuleResult", map[string]any{"result": result})
}
