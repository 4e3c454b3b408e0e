package module

import (
	"os"
	"path/filepath"

	"github.com/benthomasson/ftl-go/internal/ftlerr"
)

// Descriptor is a resolved module: its name, the path it was found at,
// its raw bytes, and its calling-convention style.
type Descriptor struct {
	Name  string
	Path  string
	Bytes []byte
	Style Style
}

// Find resolves name against dirs in order, trying "<dir>/<name>.py"
// then "<dir>/<name>" in each directory before moving to the next
// (spec.md §3). A nil or empty dirs list is silently skipped rather
// than raising (spec.md §9 open question), so Find simply reports
// ErrModuleNotFound instead of panicking on an empty search path.
func Find(name string, dirs []string) (*Descriptor, error) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, candidate := range []string{
			filepath.Join(dir, name+".py"),
			filepath.Join(dir, name),
		} {
			data, err := os.ReadFile(candidate)
			if err != nil {
				continue
			}
			return &Descriptor{
				Name:  name,
				Path:  candidate,
				Bytes: data,
				Style: Classify(data),
			}, nil
		}
	}
	return nil, ftlerr.ErrModuleNotFound
}
