// Command ftl-gate is a standalone gate entrypoint with no bundled
// modules of its own: every Module{} request must carry its bytes
// inline. It exists for exercising gatecore directly — a real run's
// gate artifact is the one internal/gatebuild generates, with modules
// and dependencies embedded at build time (spec.md §4.4, §4.5).
package main

import (
	"flag"
	"os"

	"github.com/benthomasson/ftl-go/gatecore"
)

func main() {
	var interpreter string
	flag.StringVar(&interpreter, "interpreter", "/usr/bin/python3", "interpreter for script-style modules")
	flag.Parse()

	os.Exit(gatecore.RunStdio(gatecore.Config{Interpreter: interpreter}))
}
