// Package hostvars centralizes the recognized host-vars keys (spec.md
// §3) and their per-connection-type defaults, so local execution,
// remote transport, and the scheduler all resolve them the same way.
package hostvars

import "fmt"

const (
	KeyConnection = "ansible_connection"
	KeyHost       = "ansible_host"
	KeyPort       = "ansible_port"
	KeyUser       = "ansible_user"
	KeyInterp     = "ansible_python_interpreter"
)

// String returns vars[key] as a string, or def if absent or the empty
// string. Non-string values are formatted with %v.
func String(vars map[string]any, key, def string) string {
	v, ok := vars[key]
	if !ok {
		return def
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return def
		}
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

// Int returns vars[key] coerced to an int, or def if absent or not
// representable as a number.
func Int(vars map[string]any, key string, def int) int {
	v, ok := vars[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// IsLocal reports whether vars selects the local connection type
// (spec.md §3's `ansible_connection: "local"`).
func IsLocal(vars map[string]any) bool {
	return String(vars, KeyConnection, "") == "local"
}
