// Package scheduler fans a single module invocation out across an
// inventory: chunked, bounded-concurrency dispatch with a full barrier
// between chunks, routing each host to local or remote execution and
// capturing per-host failures into the result map instead of failing
// the whole run (spec.md §4.9).
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benthomasson/ftl-go/internal/config"
	"github.com/benthomasson/ftl-go/internal/ftlerr"
	"github.com/benthomasson/ftl-go/internal/gatebuild"
	"github.com/benthomasson/ftl-go/internal/gatepool"
	"github.com/benthomasson/ftl-go/internal/hostvars"
	"github.com/benthomasson/ftl-go/internal/inventory"
	"github.com/benthomasson/ftl-go/internal/localexec"
	"github.com/benthomasson/ftl-go/internal/logging"
	"github.com/benthomasson/ftl-go/internal/module"
	"golang.org/x/sync/errgroup"
)

// defaultChunkSize mirrors config.DefaultConfig's scheduler setting
// for callers that build a Scheduler without going through config.
const defaultChunkSize = 10

// Scheduler binds the configuration, module search path, and pooled
// gate connections one RunModule/RunFTLModule invocation (or a whole
// run of several, via the driver CLI) shares.
type Scheduler struct {
	Config     *config.Config
	ModuleDirs []string
	Pool       *gatepool.Pool

	// buildGate and openGate are overridable for testing; production
	// callers get New's defaults wired to gatebuild and transport.
	// buildGate's moduleNames argument is empty for the FTL-native
	// sibling, since a native module is always inlined rather than
	// bundled into the gate archive (spec.md §4.5's FTLModule handler
	// has no gate-side bundling concept).
	buildGate func(moduleNames []string) (artifactPath, hash string, err error)
	openGate  func(host string, hostVars map[string]any, artifactPath, hash string) (gatepool.GateSession, error)
}

// New returns a Scheduler wired to build and dial real gates. repoDir
// is this module's own checkout path, needed by gatebuild to generate
// a scratch module's replace directive.
func New(cfg *config.Config, moduleDirs []string, repoDir string) *Scheduler {
	s := &Scheduler{
		Config:     cfg,
		ModuleDirs: moduleDirs,
		Pool:       gatepool.New(),
	}
	s.buildGate = func(moduleNames []string) (string, string, error) {
		return buildGateArtifact(cfg, moduleDirs, repoDir, moduleNames)
	}
	s.openGate = func(host string, hv map[string]any, artifactPath, hash string) (gatepool.GateSession, error) {
		return openRemoteGate(cfg, host, hv, artifactPath, hash)
	}
	return s
}

// RunModule resolves moduleName once and dispatches it against every
// host in hosts with args as the base module arguments, using the
// subprocess calling conventions locally (§4.3) and the Module{} wire
// path remotely (§4.6). A module that cannot be resolved at all is
// fatal to the whole call; a module that fails against one host is
// captured as that host's own result.
func (s *Scheduler) RunModule(hosts map[string]inventory.HostVars, moduleName string, args map[string]any) (map[string]any, error) {
	return s.run(hosts, moduleName, args, false)
}

// RunFTLModule is RunModule's FTL-native sibling (spec.md §4.9): same
// chunked fan-out and per-host failure capture, but every dispatch
// uses the FTL-native calling convention — a local Go plugin load via
// localexec.RunNative, or an inlined FTLModule{} frame remotely.
func (s *Scheduler) RunFTLModule(hosts map[string]inventory.HostVars, moduleName string, args map[string]any) (map[string]any, error) {
	return s.run(hosts, moduleName, args, true)
}

// run is the shared body both sibling entry points wire: resolve the
// module once, flatten and sort hosts, chunk, and dispatch each chunk
// concurrently with a full barrier before the next (spec.md §4.9
// steps 1, 2, 5, 8).
func (s *Scheduler) run(hosts map[string]inventory.HostVars, moduleName string, args map[string]any, native bool) (map[string]any, error) {
	desc, err := module.Find(moduleName, s.ModuleDirs)
	if err != nil {
		return nil, fmt.Errorf("scheduler: resolve module %q: %w", moduleName, err)
	}

	names := make([]string, 0, len(hosts))
	for host := range hosts {
		names = append(names, host)
	}
	sort.Strings(names)

	chunkSize := defaultChunkSize
	if s.Config != nil && s.Config.Scheduler.ChunkSize > 0 {
		chunkSize = s.Config.Scheduler.ChunkSize
	}

	results := make(map[string]any, len(names))
	var mu sync.Mutex

	for start := 0; start < len(names); start += chunkSize {
		end := start + chunkSize
		if end > len(names) {
			end = len(names)
		}
		chunk := names[start:end]

		g, _ := errgroup.WithContext(context.Background())
		for _, host := range chunk {
			host := host
			g.Go(func() error {
				result := s.dispatchHost(host, hosts[host], desc, args, native)
				mu.Lock()
				results[host] = result
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait() // per-host failures are captured above, never propagated
	}

	return results, nil
}

// dispatchHost never returns a Go error: every failure mode becomes
// the {"error": true, "msg": ...} result shape the rest of the system
// expects a failed host to report (spec.md §4.9). It also records a
// TaskLog entry for the dispatch, win or lose.
func (s *Scheduler) dispatchHost(host string, hv inventory.HostVars, desc *module.Descriptor, args map[string]any, native bool) map[string]any {
	started := time.Now()
	connection := "remote"
	if hostvars.IsLocal(hv) {
		connection = "local"
	}

	effective, err := effectiveArgs(hv, args)
	if err != nil {
		s.logTask(host, desc.Name, connection, started, false, false, err)
		return errorResult(err)
	}

	var result map[string]any
	var reused bool
	if connection == "local" {
		if native {
			result, err = localexec.RunNative(desc.Path, effective)
		} else {
			result, err = localexec.Run(hv, desc, effective, s.localInterp())
		}
	} else {
		result, reused, err = s.dispatchRemote(host, hv, desc, effective, native)
	}

	s.logTask(host, desc.Name, connection, started, reused, err == nil, err)
	if err != nil {
		logging.Op().Warn("scheduler: dispatch failed", "host", host, "module", desc.Name, "error", err)
		return errorResult(err)
	}
	return result
}

func (s *Scheduler) logTask(host, moduleName, connection string, started time.Time, reused, success bool, err error) {
	entry := &logging.TaskLog{
		Host:       host,
		Module:     moduleName,
		Connection: connection,
		DurationMs: time.Since(started).Milliseconds(),
		GateReused: reused,
		Success:    success,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	logging.Default().Log(entry)
}

func (s *Scheduler) localInterp() string {
	if s.Config == nil {
		return ""
	}
	return s.Config.Gate.LocalInterp
}

func errorResult(err error) map[string]any {
	return map[string]any{"error": true, "msg": err.Error()}
}

// dispatchRemote acquires or opens this host's pooled gate, dispatches
// once, and — only when the failure is a transport error on a reused
// handle — evicts one pooled gate, opens a fresh gate and retries
// exactly once before giving up (spec.md §4.6 failure & retry policy). It reports whether the
// handle it ultimately dispatched against was a reused pooled one, for
// logging.
func (s *Scheduler) dispatchRemote(host string, hv map[string]any, desc *module.Descriptor, args map[string]any, native bool) (map[string]any, bool, error) {
	handle := s.Pool.Acquire(host)
	reused := handle != nil

	if handle == nil {
		var err error
		handle, err = s.openGateHandle(host, hv, desc, native)
		if err != nil {
			return nil, false, err
		}
	}

	result, err := dispatchModule(handle.Session, desc, args, native)
	if err == nil {
		s.Pool.Release(host, handle)
		return result, reused, nil
	}
	_ = handle.Session.Close()

	if !reused || !errors.Is(err, ftlerr.ErrTransport) {
		return nil, reused, err
	}

	s.Pool.EvictOne()
	handle, openErr := s.openGateHandle(host, hv, desc, native)
	if openErr != nil {
		return nil, reused, openErr
	}
	result, err = dispatchModule(handle.Session, desc, args, native)
	if err != nil {
		_ = handle.Session.Close()
		return nil, reused, err
	}
	s.Pool.Release(host, handle)
	return result, reused, nil
}

func (s *Scheduler) openGateHandle(host string, hv map[string]any, desc *module.Descriptor, native bool) (*gatepool.Handle, error) {
	var moduleNames []string
	if !native {
		moduleNames = []string{desc.Name}
	}
	artifactPath, hash, err := s.buildGate(moduleNames)
	if err != nil {
		return nil, fmt.Errorf("scheduler: build gate for %s: %w", host, err)
	}
	session, err := s.openGate(host, hv, artifactPath, hash)
	if err != nil {
		return nil, err
	}
	return &gatepool.Handle{Session: session, ArtifactHash: hash}, nil
}
