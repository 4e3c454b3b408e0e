package gatecore

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"testing/fstest"

	"github.com/benthomasson/ftl-go/internal/wire"
	"github.com/stretchr/testify/require"
)

// readReply decodes exactly one frame and unmarshals its body into v.
func readReply(t *testing.T, r io.Reader, v any) string {
	t.Helper()
	frame, err := wire.Decode(r)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(frame.Body, v))
	return frame.Tag
}

func encodeRequest(t *testing.T, tag string, body any) []byte {
	t.Helper()
	data, err := wire.Encode(tag, body)
	require.NoError(t, err)
	return data
}

func TestRunHelloThenShutdown(t *testing.T) {
	var in bytes.Buffer
	in.Write(encodeRequest(t, "Hello", map[string]any{}))
	in.Write(encodeRequest(t, "Shutdown", map[string]any{}))

	var out bytes.Buffer
	err := Run(&in, &out, Config{Interpreter: "/bin/sh"})
	require.NoError(t, err)

	var hello map[string]any
	tag := readReply(t, &out, &hello)
	require.Equal(t, "Hello", tag)

	var goodbye map[string]any
	tag = readReply(t, &out, &goodbye)
	require.Equal(t, "Goodbye", tag)
}

func TestRunEOFSendsGoodbye(t *testing.T) {
	var in bytes.Buffer // empty: immediate EOF
	var out bytes.Buffer
	err := Run(&in, &out, Config{Interpreter: "/bin/sh"})
	require.NoError(t, err)

	var goodbye map[string]any
	tag := readReply(t, &out, &goodbye)
	require.Equal(t, "Goodbye", tag)
}

func TestRunModuleBundled(t *testing.T) {
	script := `#!/bin/sh
printf '{"more_args": "%s"}' "$(cat "$1")"
`
	fsys := fstest.MapFS{
		"argtest": {Data: []byte(script)},
	}

	var in bytes.Buffer
	in.Write(encodeRequest(t, "Module", map[string]any{
		"module_name": "argtest",
		"module_args": map[string]any{"somekey": "somevalue"},
	}))
	in.Write(encodeRequest(t, "Shutdown", map[string]any{}))

	var out bytes.Buffer
	err := Run(&in, &out, Config{Modules: fsys, Interpreter: "/bin/sh"})
	require.NoError(t, err)

	var result map[string]any
	tag := readReply(t, &out, &result)
	require.Equal(t, "ModuleResult", tag)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(result["stdout"].(string)), &parsed))
	require.Equal(t, "somekey=somevalue", parsed["more_args"])
}

func TestRunModuleNotBundled(t *testing.T) {
	var in bytes.Buffer
	in.Write(encodeRequest(t, "Module", map[string]any{
		"module_name": "missing",
		"module_args": map[string]any{},
	}))
	in.Write(encodeRequest(t, "Shutdown", map[string]any{}))

	var out bytes.Buffer
	err := Run(&in, &out, Config{Modules: fstest.MapFS{}, Interpreter: "/bin/sh"})
	require.NoError(t, err)

	var result map[string]any
	tag := readReply(t, &out, &result)
	require.Equal(t, "ModuleNotFound", tag)
}

func TestRunUnknownTagRepliesError(t *testing.T) {
	var in bytes.Buffer
	in.Write(encodeRequest(t, "Bogus", map[string]any{}))
	in.Write(encodeRequest(t, "Shutdown", map[string]any{}))

	var out bytes.Buffer
	err := Run(&in, &out, Config{Interpreter: "/bin/sh"})
	require.NoError(t, err)

	var result map[string]any
	tag := readReply(t, &out, &result)
	require.Equal(t, "Error", tag)
}
