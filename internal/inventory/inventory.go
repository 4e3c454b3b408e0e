// Package inventory loads the host/group/vars structure a run targets
// from YAML, independent of how the scheduler later flattens it
// (spec.md §2 Non-goals: no validation beyond basic shape).
package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HostVars is an arbitrary bag of per-host variables (spec.md §3):
// ansible_connection, ansible_host, ansible_port, ansible_user,
// ansible_python_interpreter, and any module-specific values a
// playbook-style caller wants to pass through.
type HostVars map[string]any

// Group is one inventory group: its direct hosts and their vars, plus
// vars applied to every host in the group.
type Group struct {
	Hosts map[string]HostVars `yaml:"hosts"`
	Vars  HostVars            `yaml:"vars"`
}

// Inventory is the top-level YAML document: a set of named groups.
type Inventory map[string]Group

// Load reads and parses an inventory file.
func Load(path string) (Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inventory: read %s: %w", path, err)
	}
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("inventory: parse %s: %w", path, err)
	}
	return inv, nil
}

// Hosts flattens every group's hosts into a single host-name to
// HostVars map, merging each group's Vars under the host's own vars
// (the host's own values win on key collision) and resolving name
// collisions across groups last-occurrence-wins in map iteration —
// the scheduler imposes its own deterministic ordering on top of this
// when it matters (spec.md §4.9).
func (inv Inventory) Hosts() map[string]HostVars {
	out := make(map[string]HostVars)
	for _, group := range inv {
		for host, vars := range group.Hosts {
			merged := make(HostVars, len(group.Vars)+len(vars))
			for k, v := range group.Vars {
				merged[k] = v
			}
			for k, v := range vars {
				merged[k] = v
			}
			out[host] = merged
		}
	}
	return out
}
