package scheduler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/benthomasson/ftl-go/internal/ftlerr"
	"github.com/benthomasson/ftl-go/internal/gatepool"
	"github.com/benthomasson/ftl-go/internal/module"
	"github.com/benthomasson/ftl-go/internal/wire"
)

// dispatchModule sends a Module{} or FTLModule{} frame over session —
// FTLModule always inlines the module's bytes as base64, since an
// FTL-native module is never bundled into the gate archive (spec.md
// §4.5). The Module{} path retries once with the bytes inlined if the
// gate reports ModuleNotFound — the case where a dispatch reaches a
// gate this run didn't build, or a gate whose bundle predates this
// module (spec.md §4.6).
func dispatchModule(session gatepool.GateSession, desc *module.Descriptor, args map[string]any, native bool) (map[string]any, error) {
	if native {
		frame, err := session.Dispatch("FTLModule", map[string]any{
			"module_name": desc.Name,
			"module":      base64.StdEncoding.EncodeToString(desc.Bytes),
			"module_args": args,
		})
		if err != nil {
			return nil, err
		}
		return translateReply(frame)
	}

	frame, err := session.Dispatch("Module", map[string]any{
		"module_name": desc.Name,
		"module_args": args,
	})
	if err != nil {
		return nil, err
	}

	if frame.Tag == "ModuleNotFound" {
		frame, err = session.Dispatch("Module", map[string]any{
			"module_name": desc.Name,
			"module_args": args,
			"module":      base64.StdEncoding.EncodeToString(desc.Bytes),
		})
		if err != nil {
			return nil, err
		}
	}

	return translateReply(frame)
}

func translateReply(frame wire.Frame) (map[string]any, error) {
	switch frame.Tag {
	case "ModuleResult":
		var body struct {
			Stdout string `json:"stdout"`
			Stderr string `json:"stderr"`
		}
		if err := json.Unmarshal(frame.Body, &body); err != nil {
			return nil, fmt.Errorf("scheduler: decode ModuleResult: %w", err)
		}
		if body.Stdout == "" {
			return map[string]any{"error": map[string]any{"message": body.Stderr}}, nil
		}
		var result map[string]any
		if err := json.Unmarshal([]byte(body.Stdout), &result); err != nil {
			return map[string]any{"error": body.Stdout}, nil
		}
		return result, nil

	case "FTLModuleResult":
		var body struct {
			Result map[string]any `json:"result"`
		}
		if err := json.Unmarshal(frame.Body, &body); err != nil {
			return nil, fmt.Errorf("scheduler: decode FTLModuleResult: %w", err)
		}
		return body.Result, nil

	case "GateSystemError":
		var body struct {
			Message string `json:"message"`
			Stack   string `json:"stack"`
		}
		_ = json.Unmarshal(frame.Body, &body)
		return nil, &ftlerr.GateSystemError{Message: body.Message, Stack: body.Stack}

	case "ModuleNotFound":
		return nil, ftlerr.ErrModuleNotFound

	default:
		return nil, fmt.Errorf("scheduler: unexpected reply tag %q", frame.Tag)
	}
}
