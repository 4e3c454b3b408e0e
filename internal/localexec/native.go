package localexec

import (
	"fmt"
	"plugin"
)

// MainFunc is the signature an FTL-native module must export as Main.
type MainFunc func(args map[string]any) (map[string]any, error)

// RunNative bypasses subprocess execution entirely: it loads desc's
// path as a Go plugin, locates the exported Main symbol, and invokes it
// directly with args, using the returned value as the module's result
// (spec.md §4.3's FTL-native variant — the closest Go idiom to "load the
// module file, locate a callable named main, invoke it with args as
// keyword arguments").
func RunNative(path string, args map[string]any) (Result, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("localexec: open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup("Main")
	if err != nil {
		return nil, fmt.Errorf("localexec: %s has no exported Main: %w", path, err)
	}
	main, ok := sym.(func(map[string]any) (map[string]any, error))
	if !ok {
		return nil, fmt.Errorf("localexec: %s's Main has an unexpected signature", path)
	}
	return main(args)
}
