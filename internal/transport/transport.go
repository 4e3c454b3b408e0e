// Package transport drives one SSH connection to a remote host: dialing
// in, confirming the target interpreter, making sure the right gate
// artifact is present and executable, spawning it, and exchanging wire
// frames with it over the session's stdin/stdout (spec.md §4.6).
package transport

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/benthomasson/ftl-go/internal/config"
	"github.com/benthomasson/ftl-go/internal/ftlerr"
	"github.com/benthomasson/ftl-go/internal/hostvars"
	"github.com/benthomasson/ftl-go/internal/wire"
	"golang.org/x/crypto/ssh"
)

// GateSession is one live gate process reached over SSH: a frame
// request/reply channel bound to the session's stdin/stdout.
type GateSession struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  io.Reader
	stderr  io.Reader
}

// Open dials hostVars's host, verifies the target interpreter, ensures
// artifactPath is staged at remoteDir on the far side, spawns it, and
// completes the Hello{} handshake, returning a ready GateSession.
func Open(hostVars map[string]any, sshCfg config.SSHConfig, connectTimeout time.Duration, remoteDir, interpreter, artifactPath, artifactHash string) (*GateSession, error) {
	client, err := Dial(hostVars, sshCfg, connectTimeout)
	if err != nil {
		return nil, ftlerr.WrapTransport(err)
	}

	if err := probeInterpreter(client, interpreter); err != nil {
		client.Close()
		return nil, ftlerr.WrapTransport(err)
	}

	remotePath, err := ensureArtifact(client, remoteDir, artifactPath, artifactHash)
	if err != nil {
		client.Close()
		return nil, ftlerr.WrapTransport(err)
	}

	gs, err := spawn(client, remotePath)
	if err != nil {
		client.Close()
		return nil, ftlerr.WrapTransport(err)
	}

	reply, err := gs.Dispatch("Hello", map[string]any{})
	if err != nil {
		gs.Close()
		return nil, ftlerr.WrapTransport(err)
	}
	if reply.Tag != "Hello" {
		stderr := gs.drainStderr()
		gs.Close()
		return nil, fmt.Errorf("transport: handshake failed, gate replied %q: %s", reply.Tag, stderr)
	}
	return gs, nil
}

// Dial opens an SSH connection to hostVars's host using sshCfg's
// defaults for any field hostVars doesn't override (spec.md §3).
// Exported so fileops can dial plain sftp/session connections without
// going through the gate-spawning Open path.
func Dial(hostVars map[string]any, sshCfg config.SSHConfig, timeout time.Duration) (*ssh.Client, error) {
	host := hostvars.String(hostVars, hostvars.KeyHost, "")
	port := hostvars.Int(hostVars, hostvars.KeyPort, sshCfg.DefaultPort)
	user := hostvars.String(hostVars, hostvars.KeyUser, sshCfg.DefaultUser)

	ccfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeysCallback(defaultAgentSigners)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}
	return ssh.Dial("tcp", fmt.Sprintf("%s:%d", host, port), ccfg)
}

// probeInterpreter runs "<interpreter> --version" over a throwaway
// session and requires the single-line "Python X.Y.Z" form, refusing
// to proceed against an interpreter it cannot identify (spec.md §4.6).
func probeInterpreter(client *ssh.Client, interpreter string) error {
	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("transport: open probe session: %w", err)
	}
	defer session.Close()

	out, err := session.CombinedOutput(interpreter + " --version")
	if err != nil {
		return fmt.Errorf("transport: probe %s: %w", interpreter, err)
	}
	line := strings.TrimSpace(string(out))
	if !isValidPythonVersionLine(line) {
		return fmt.Errorf("transport: unexpected interpreter identification %q", line)
	}
	if major := pythonMajorVersion(line); major < 3 {
		return fmt.Errorf("transport: Python 3 or greater required, got %q", line)
	}
	return nil
}

// isValidPythonVersionLine reports whether line is exactly the
// single-line "Python X.Y.Z" form spec.md §4.6 requires before a gate
// is trusted to run against that interpreter.
func isValidPythonVersionLine(line string) bool {
	if strings.Contains(line, "\n") {
		return false
	}
	rest, ok := strings.CutPrefix(line, "Python ")
	if !ok {
		return false
	}
	parts := strings.Split(rest, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// pythonMajorVersion extracts the major version number from a line
// isValidPythonVersionLine has already accepted; the caller enforces
// spec.md §4.6's "Python 3 or greater required" floor.
func pythonMajorVersion(line string) int {
	rest, _ := strings.CutPrefix(line, "Python ")
	major, _ := strconv.Atoi(strings.SplitN(rest, ".", 2)[0])
	return major
}

func spawn(client *ssh.Client, remotePath string) (*GateSession, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("transport: open gate session: %w", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("transport: stdin pipe: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("transport: stdout pipe: %w", err)
	}
	stderr, err := session.StderrPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("transport: stderr pipe: %w", err)
	}
	if err := session.Start(remotePath); err != nil {
		session.Close()
		return nil, fmt.Errorf("transport: start gate: %w", err)
	}
	return &GateSession{client: client, session: session, stdin: stdin, stdout: stdout, stderr: stderr}, nil
}

// Dispatch writes one request frame and reads back exactly one reply.
func (g *GateSession) Dispatch(tag string, body any) (wire.Frame, error) {
	if err := wire.WriteText(g.stdin, tag, body); err != nil {
		return wire.Frame{}, ftlerr.WrapTransport(err)
	}
	frame, err := wire.Decode(g.stdout)
	if err != nil {
		return wire.Frame{}, ftlerr.WrapTransport(err)
	}
	return frame, nil
}

// drainStderr best-effort reads whatever the gate has already written
// to stderr, for folding into a handshake-failure message (spec.md
// §4.6 step 4).
func (g *GateSession) drainStderr() string {
	if g.stderr == nil {
		return ""
	}
	buf := make([]byte, 4096)
	n, _ := g.stderr.Read(buf)
	return strings.TrimSpace(string(buf[:n]))
}

// Close attempts an orderly Shutdown{} exchange, then tears down the
// session and the underlying connection regardless of whether that
// exchange succeeded.
func (g *GateSession) Close() error {
	_, _ = g.Dispatch("Shutdown", map[string]any{})
	_ = g.stdin.Close()
	waitErr := g.session.Wait()
	_ = g.client.Close()
	return waitErr
}

// Client exposes the underlying SSH client for opening additional
// sftp/session channels against an already-dialed host.
func (g *GateSession) Client() *ssh.Client {
	return g.client
}
