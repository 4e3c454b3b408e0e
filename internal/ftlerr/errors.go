// Package ftlerr defines the error kinds the driver must distinguish by
// type, not by string: module resolution failures, wire protocol
// violations, gate-side system errors, and transport-level failures that
// drive the gate pool's evict-and-retry loop.
package ftlerr

import (
	"errors"
	"fmt"
)

// ErrModuleNotFound is returned when a module name cannot be resolved
// against the configured module directories. Fatal to the whole
// scheduler invocation when raised during module resolution (spec.md
// §4.9 step 1); fatal to a single gate dispatch, with a retry, when
// raised from the gate during a Module{} exchange (spec.md §4.6).
var ErrModuleNotFound = errors.New("module not found")

// ProtocolError carries the diagnostic context for a malformed wire
// frame: the bytes that failed to parse as a hex length prefix, and
// whatever trailing bytes were already buffered when the error was
// noticed.
type ProtocolError struct {
	Prefix   []byte
	Trailing []byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: invalid length prefix %q (trailing %d bytes)", e.Prefix, len(e.Trailing))
}

// GateSystemError mirrors the gate's GateSystemError{} wire message: an
// uncaught exception inside the gate process, reported as a result
// value for the host rather than propagated as a Go error at the call
// site that triggered it.
type GateSystemError struct {
	Message string
	Stack   string
}

func (e *GateSystemError) Error() string {
	if e.Stack == "" {
		return e.Message
	}
	return e.Message + "\n" + e.Stack
}

// ErrTransport is the sentinel wrapped by every connection-reset,
// connection-lost, and timeout error surfaced by the transport package.
// Callers use errors.Is(err, ErrTransport) to decide whether to evict
// the pooled gate and retry (spec.md §4.6 failure & retry policy).
var ErrTransport = errors.New("transport error")

// WrapTransport wraps err so errors.Is(result, ErrTransport) succeeds,
// preserving the original error for logging via errors.Unwrap.
func WrapTransport(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// ErrModuleNotFoundInGate is the gate-local sentinel distinguishing "the
// gate doesn't have this module bundled" from every other failure
// inside the gate's Module{} handling. It never escapes the gate
// process; it is translated into a ModuleNotFound{} wire reply.
var ErrModuleNotFoundInGate = errors.New("module not found in gate")
