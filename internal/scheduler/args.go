package scheduler

import "github.com/benthomasson/ftl-go/internal/ref"

// effectiveArgs computes the module_args a single host's dispatch
// actually sees. When args holds no Ref values and hostVars carries no
// per-host override, the same map is handed to every host unmodified
// — safe, since nothing downstream mutates it, and cheaper than
// copying for a fan-out across hundreds of hosts. Otherwise a fresh
// map is built: every value is dereferenced against hostVars, and any
// host-specific "module_args" override in hostVars is applied last so
// host-specific values always win (spec.md §4.8, §4.9).
func effectiveArgs(hostVars map[string]any, args map[string]any) (map[string]any, error) {
	overrides, hasOverrides := hostVars["module_args"].(map[string]any)
	if !hasOverrides && !containsRef(args) {
		return args, nil
	}

	out := make(map[string]any, len(args))
	for k, v := range args {
		resolved, err := ref.Deref(hostVars, v)
		if err != nil {
			return nil, err
		}
		out[k] = resolved
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out, nil
}

func containsRef(args map[string]any) bool {
	for _, v := range args {
		if ref.IsRef(v) {
			return true
		}
	}
	return false
}
