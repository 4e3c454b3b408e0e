package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/benthomasson/ftl-go/internal/config"
	"github.com/benthomasson/ftl-go/internal/gatepool"
	"github.com/benthomasson/ftl-go/internal/inventory"
	"github.com/benthomasson/ftl-go/internal/wire"
	"github.com/stretchr/testify/require"
)

func writeTestModule(t *testing.T, dir, name, script string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755))
}

func TestRunModuleLocalConnection(t *testing.T) {
	dir := t.TempDir()
	writeTestModule(t, dir, "argtest", "#!/bin/sh\nprintf '{\"ok\": true}'\n")

	s := &Scheduler{Config: config.DefaultConfig(), ModuleDirs: []string{dir}, Pool: gatepool.New()}
	s.Config.Gate.LocalInterp = "/bin/sh"

	hosts := map[string]inventory.HostVars{
		"localhost": {"ansible_connection": "local"},
	}

	results, err := s.RunModule(hosts, "argtest", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"ok": true}, results["localhost"])
}

func TestRunModuleUnknownModuleIsFatal(t *testing.T) {
	s := &Scheduler{Config: config.DefaultConfig(), ModuleDirs: []string{t.TempDir()}, Pool: gatepool.New()}
	_, err := s.RunModule(map[string]inventory.HostVars{"h1": {}}, "nope", nil)
	require.Error(t, err)
}

func TestRunModuleCapturesPerHostError(t *testing.T) {
	dir := t.TempDir()
	writeTestModule(t, dir, "broken", "#!/bin/sh\nexit 1\n")

	s := &Scheduler{Config: config.DefaultConfig(), ModuleDirs: []string{dir}, Pool: gatepool.New()}
	s.Config.Gate.LocalInterp = "/bin/sh"

	hosts := map[string]inventory.HostVars{"localhost": {"ansible_connection": "local"}}
	results, err := s.RunModule(hosts, "broken", map[string]any{})
	require.NoError(t, err)
	// an exit-1 script with no stdout parses as a non-JSON "error" result,
	// not a Go error — localexec only fails on launch failure, not exit code.
	require.Contains(t, results["localhost"], "error")
}

type fakeGateSession struct {
	calls    int
	closed   bool
	replies  []wire.Frame
	sentTags []string
}

func (f *fakeGateSession) Dispatch(tag string, body any) (wire.Frame, error) {
	f.calls++
	f.sentTags = append(f.sentTags, tag)
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func (f *fakeGateSession) Close() error {
	f.closed = true
	return nil
}

func moduleResultFrame(t *testing.T, result map[string]any) wire.Frame {
	t.Helper()
	stdout, err := json.Marshal(result)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{"stdout": string(stdout), "stderr": ""})
	require.NoError(t, err)
	return wire.Frame{Tag: "ModuleResult", Body: body}
}

func TestRunModuleRemoteReusesPooledGate(t *testing.T) {
	dir := t.TempDir()
	writeTestModule(t, dir, "ping", "#!/bin/sh\n")

	session := &fakeGateSession{replies: []wire.Frame{
		moduleResultFrame(t, map[string]any{"pong": true}),
		moduleResultFrame(t, map[string]any{"pong": true}),
	}}
	buildCalls := 0

	s := &Scheduler{Config: config.DefaultConfig(), ModuleDirs: []string{dir}, Pool: gatepool.New()}
	s.buildGate = func(names []string) (string, string, error) {
		buildCalls++
		return "/tmp/fake-gate", "deadbeef", nil
	}
	s.openGate = func(host string, hv map[string]any, artifactPath, hash string) (gatepool.GateSession, error) {
		return session, nil
	}

	hosts := map[string]inventory.HostVars{"web1": {"ansible_host": "10.0.0.1"}}
	results, err := s.RunModule(hosts, "ping", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"pong": true}, results["web1"])
	require.Equal(t, 1, buildCalls)
	require.False(t, session.closed, "a successful dispatch releases the handle back to the pool")

	results, err = s.RunModule(hosts, "ping", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"pong": true}, results["web1"])
	require.Equal(t, 1, buildCalls, "the second run reuses the pooled gate instead of building another")
	require.Equal(t, 2, session.calls)

	handle := s.Pool.Acquire("web1")
	require.NotNil(t, handle)
	require.Equal(t, "deadbeef", handle.ArtifactHash)
}

func ftlModuleResultFrame(t *testing.T, result map[string]any) wire.Frame {
	t.Helper()
	body, err := json.Marshal(map[string]any{"result": result})
	require.NoError(t, err)
	return wire.Frame{Tag: "FTLModuleResult", Body: body}
}

func TestRunFTLModuleRemoteSendsFTLModuleFrame(t *testing.T) {
	dir := t.TempDir()
	writeTestModule(t, dir, "native_ping", "not-really-a-plugin")

	session := &fakeGateSession{replies: []wire.Frame{
		ftlModuleResultFrame(t, map[string]any{"pong": true}),
	}}

	var builtModuleNames []string
	s := &Scheduler{Config: config.DefaultConfig(), ModuleDirs: []string{dir}, Pool: gatepool.New()}
	s.buildGate = func(names []string) (string, string, error) {
		builtModuleNames = names
		return "/tmp/fake-gate", "deadbeef", nil
	}
	s.openGate = func(host string, hv map[string]any, artifactPath, hash string) (gatepool.GateSession, error) {
		return session, nil
	}

	hosts := map[string]inventory.HostVars{"web1": {"ansible_host": "10.0.0.1"}}
	results, err := s.RunFTLModule(hosts, "native_ping", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"pong": true}, results["web1"])
	require.Equal(t, "FTLModule", session.sentTags[0])
	require.Empty(t, builtModuleNames, "a native module is always inlined, never bundled ahead of time")
}

func TestRunFTLModuleLocalUsesRunNative(t *testing.T) {
	// localexec.RunNative loads a real Go plugin via plugin.Open, which
	// this test's placeholder file is not; it only needs to prove the
	// native path is actually reached and its failure is captured as a
	// per-host error rather than a different code path's behavior.
	dir := t.TempDir()
	writeTestModule(t, dir, "native_echo", "not-a-plugin")

	s := &Scheduler{Config: config.DefaultConfig(), ModuleDirs: []string{dir}, Pool: gatepool.New()}
	hosts := map[string]inventory.HostVars{"localhost": {"ansible_connection": "local"}}

	results, err := s.RunFTLModule(hosts, "native_echo", map[string]any{})
	require.NoError(t, err)
	require.Contains(t, results["localhost"], "error")
	result, ok := results["localhost"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, result["msg"], "open plugin", "the failure comes from localexec.RunNative's plugin load")
}
