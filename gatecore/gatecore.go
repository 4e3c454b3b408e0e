// Package gatecore is the gate helper runtime (spec.md §4.5): the
// message loop a gate process runs after it is spawned over SSH, reading
// Hello{}/Module{}/FTLModule{}/Shutdown{} frames from stdin and writing
// replies to stdout until the driver disconnects or asks it to exit.
//
// It is exported, not internal/, because the gate artifact a build
// produces is itself a small Go program generated into a scratch module
// (see internal/gatebuild) that imports gatecore from outside this
// module's own source tree. Everything gatecore depends on for module
// execution still lives under internal/ — the scratch module never
// needs to see those directly.
package gatecore

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/benthomasson/ftl-go/internal/ftlerr"
	"github.com/benthomasson/ftl-go/internal/logging"
	"github.com/benthomasson/ftl-go/internal/wire"
)

// Config bundles what a generated gate main() bakes in at build time:
// the module files and pip dependency tree it was packaged with, and
// the interpreter path script-style modules are spawned against.
type Config struct {
	// Modules holds the original module files this gate was built
	// with, keyed by their on-disk basename (e.g. "copy.py").
	Modules fs.FS
	// Deps holds a pip-installed dependency tree to expose to spawned
	// interpreters via PYTHONPATH. May be nil when the gate was built
	// with no dependencies.
	Deps fs.FS
	// Interpreter is the target_interpreter baked in at build time.
	Interpreter string
}

// Run drives the gate's message loop against in/out until it sees
// Shutdown{} or in reaches EOF, at which point it writes Goodbye{} and
// returns nil. A frame whose length prefix is not hex, a request body
// of the wrong shape, or an unknown tag is reported back as Error{} and
// the loop continues; any other read failure (a short payload, a
// payload that is not a JSON [tag, body] pair) or a write failure ends
// the loop with a non-nil error.
func Run(in io.Reader, out io.Writer, cfg Config) error {
	depsDir, cleanup, err := materializeDeps(cfg.Deps)
	if err != nil {
		return err
	}
	defer cleanup()

	for {
		frame, err := wire.Decode(in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return wire.WriteBytes(out, "Goodbye", map[string]any{})
			}
			var proto *ftlerr.ProtocolError
			if errors.As(err, &proto) {
				_ = wire.WriteBytes(out, "Error", map[string]any{"message": proto.Error()})
				continue
			}
			return err
		}

		switch frame.Tag {
		case "Hello":
			err = wire.WriteBytes(out, "Hello", map[string]any{})
		case "Module":
			err = handleModule(out, cfg, depsDir, frame.Body)
		case "FTLModule":
			err = handleFTLModule(out, frame.Body)
		case "Shutdown":
			return wire.WriteBytes(out, "Goodbye", map[string]any{})
		default:
			err = wire.WriteBytes(out, "Error", map[string]any{"message": "unknown tag: " + frame.Tag})
		}
		if err != nil {
			return err
		}
	}
}

// RunStdio is the convenience entry point a generated gate main()
// calls: Run against os.Stdin/os.Stdout, returning the process exit
// code per spec.md §4.5 (0 on an orderly Goodbye, 1 on an uncaught
// failure in the loop itself).
func RunStdio(cfg Config) int {
	if err := Run(os.Stdin, os.Stdout, cfg); err != nil {
		logging.Op().Error("gatecore: message loop failed", "error", err)
		return 1
	}
	return 0
}
