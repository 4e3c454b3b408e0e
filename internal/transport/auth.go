package transport

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// defaultAgentSigners authenticates against whatever keys the local
// ssh-agent holds, the same mechanism an interactive `ssh` invocation
// uses. There is no FTL-specific credential store; host access is
// exactly whatever the operator's own agent grants.
func defaultAgentSigners() ([]ssh.Signer, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, fmt.Errorf("transport: SSH_AUTH_SOCK not set, no ssh-agent available")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("transport: dial ssh-agent: %w", err)
	}
	return agent.NewClient(conn).Signers()
}
