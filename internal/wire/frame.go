// Package wire implements the length-prefixed JSON frame protocol shared
// by the driver and every gate process (spec.md §4.1, §6): an 8-character
// lowercase hex length prefix followed by exactly that many bytes of
// UTF-8 JSON holding a two-element `[tag, body]` array.
package wire

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/benthomasson/ftl-go/internal/ftlerr"
	"github.com/benthomasson/ftl-go/internal/logging"
)

// maxFrameLen is 16^8, the first length the 8-hex-digit prefix cannot
// represent.
const maxFrameLen = 1 << 32

// Frame is a decoded [tag, body] wire message.
type Frame struct {
	Tag  string
	Body json.RawMessage
}

// Encode serializes [tag, body] as compact JSON and prepends its
// 8-hex-digit byte length.
func Encode(tag string, body any) ([]byte, error) {
	payload := [2]any{tag, body}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal %s: %w", tag, err)
	}
	if len(data) >= maxFrameLen {
		return nil, fmt.Errorf("wire: frame for %s too large: %d bytes", tag, len(data))
	}
	out := make([]byte, 8+len(data))
	copy(out, fmt.Sprintf("%08x", len(data)))
	copy(out[8:], data)
	return out, nil
}

// WriteBytes encodes and writes a frame to a byte sink (the gate's own
// stdout). All I/O errors propagate to the caller.
func WriteBytes(w io.Writer, tag string, body any) error {
	frame, err := Encode(tag, body)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// WriteText encodes and writes a frame to a text sink (the driver's
// write side of an SSH session's stdin). A broken pipe — the gate
// process having already exited — is logged and swallowed rather than
// propagated, since by the time the driver notices there is nothing
// further to do for that host's handle; any other I/O error still
// propagates.
func WriteText(w io.Writer, tag string, body any) error {
	frame, err := Encode(tag, body)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		if isBrokenPipe(err) {
			logging.Op().Warn("wire: write to closed gate session", "tag", tag, "error", err)
			return nil
		}
		return err
	}
	return nil
}

func isBrokenPipe(err error) bool {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	return strings.Contains(err.Error(), "broken pipe") || strings.Contains(err.Error(), "closed pipe")
}

// Decode reads exactly one frame from r. A read that returns zero bytes
// before any length-prefix byte arrives signals end-of-stream: Decode
// returns io.EOF, the "no message" sentinel callers check for. A frame
// whose declared length is zero is silently skipped and decoding
// resumes on the next frame, so Decode may read past more than one
// physical frame before returning.
func Decode(r io.Reader) (Frame, error) {
	for {
		var lenBuf [8]byte
		n, err := io.ReadFull(r, lenBuf[:])
		if err != nil {
			if errors.Is(err, io.EOF) && n == 0 {
				return Frame{}, io.EOF
			}
			return Frame{}, fmt.Errorf("wire: read length prefix: %w", err)
		}

		length, hexErr := decodeHexLen(lenBuf[:])
		if hexErr != nil {
			trailing := make([]byte, 64)
			tn, _ := r.Read(trailing)
			return Frame{}, &ftlerr.ProtocolError{
				Prefix:   append([]byte(nil), lenBuf[:]...),
				Trailing: trailing[:tn],
			}
		}
		if length == 0 {
			continue
		}

		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return Frame{}, fmt.Errorf("wire: read %d-byte payload: %w", length, err)
		}

		var parts [2]json.RawMessage
		if err := json.Unmarshal(body, &parts); err != nil {
			return Frame{}, fmt.Errorf("wire: decode payload: %w", err)
		}
		var tag string
		if err := json.Unmarshal(parts[0], &tag); err != nil {
			return Frame{}, fmt.Errorf("wire: decode tag: %w", err)
		}
		return Frame{Tag: tag, Body: parts[1]}, nil
	}
}

func decodeHexLen(prefix []byte) (int, error) {
	b, err := hex.DecodeString(string(prefix))
	if err != nil || len(b) != 4 {
		return 0, fmt.Errorf("invalid length prefix %q", prefix)
	}
	return int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3]), nil
}
