// Package fileops implements the driver's auxiliary file operations —
// mkdir, copy, fetch, and template rendering — against a host, using
// the same local/remote split as module execution but without needing
// a gate process: these operate directly over sftp or the local
// filesystem (spec.md §4.10).
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/benthomasson/ftl-go/internal/config"
	"github.com/benthomasson/ftl-go/internal/hostvars"
	"github.com/pkg/sftp"
)

// Result is the {"changed": bool} shape every operation reports for
// one host.
type Result = map[string]any

func changed(v bool) Result { return Result{"changed": v} }

// Mkdir creates path on hostVars's host, recursively, and reports
// whether it had to create anything.
func Mkdir(hostVars map[string]any, sshCfg config.SSHConfig, timeout time.Duration, path string) (Result, error) {
	if hostvars.IsLocal(hostVars) {
		if _, err := os.Stat(path); err == nil {
			return changed(false), nil
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("fileops: mkdir %s: %w", path, err)
		}
		return changed(true), nil
	}

	client, err := dialForFileops(hostVars, sshCfg, timeout)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("fileops: open sftp: %w", err)
	}
	defer sftpClient.Close()

	if _, err := sftpClient.Stat(path); err == nil {
		return changed(false), nil
	}
	if err := sftpClient.MkdirAll(path); err != nil {
		return nil, fmt.Errorf("fileops: mkdir %s: %w", path, err)
	}
	return changed(true), nil
}

// Copy uploads localPath's contents to remotePath on hostVars's host.
func Copy(hostVars map[string]any, sshCfg config.SSHConfig, timeout time.Duration, localPath, remotePath string) (Result, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("fileops: read %s: %w", localPath, err)
	}

	if hostvars.IsLocal(hostVars) {
		if err := writeLocal(remotePath, data); err != nil {
			return nil, err
		}
		return changed(true), nil
	}

	client, err := dialForFileops(hostVars, sshCfg, timeout)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("fileops: open sftp: %w", err)
	}
	defer sftpClient.Close()

	if err := writeRemote(sftpClient, remotePath, data); err != nil {
		return nil, err
	}
	return changed(true), nil
}

// CopyFrom fetches remotePath from hostVars's host down to localPath.
func CopyFrom(hostVars map[string]any, sshCfg config.SSHConfig, timeout time.Duration, remotePath, localPath string) (Result, error) {
	if hostvars.IsLocal(hostVars) {
		data, err := os.ReadFile(remotePath)
		if err != nil {
			return nil, fmt.Errorf("fileops: read %s: %w", remotePath, err)
		}
		if err := writeLocal(localPath, data); err != nil {
			return nil, err
		}
		return changed(true), nil
	}

	client, err := dialForFileops(hostVars, sshCfg, timeout)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("fileops: open sftp: %w", err)
	}
	defer sftpClient.Close()

	remote, err := sftpClient.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("fileops: open remote %s: %w", remotePath, err)
	}
	defer remote.Close()

	data := make([]byte, 0)
	buf := make([]byte, 32*1024)
	for {
		n, readErr := remote.Read(buf)
		data = append(data, buf[:n]...)
		if readErr != nil {
			break
		}
	}
	if err := writeLocal(localPath, data); err != nil {
		return nil, err
	}
	return changed(true), nil
}

// Template renders templatePath with data through text/template and
// writes the result to remotePath on hostVars's host. text/template is
// the standard library's own templating engine; nothing in the corpus
// pulls in a third-party templating library, and there is no
// domain-specific templating behavior here beyond Go's own {{ }}
// substitution, so reaching outside the standard library would add a
// dependency with no behavior to justify it.
func Template(hostVars map[string]any, sshCfg config.SSHConfig, timeout time.Duration, templatePath, remotePath string, data any) (Result, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("fileops: parse template %s: %w", templatePath, err)
	}

	rendered, err := renderTemplate(tmpl, data)
	if err != nil {
		return nil, err
	}

	if hostvars.IsLocal(hostVars) {
		if err := writeLocal(remotePath, rendered); err != nil {
			return nil, err
		}
		return changed(true), nil
	}

	client, err := dialForFileops(hostVars, sshCfg, timeout)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("fileops: open sftp: %w", err)
	}
	defer sftpClient.Close()

	if err := writeRemote(sftpClient, remotePath, rendered); err != nil {
		return nil, err
	}
	return changed(true), nil
}

func writeLocal(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("fileops: create parent dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("fileops: write %s: %w", path, err)
	}
	return nil
}

func writeRemote(client *sftp.Client, path string, data []byte) error {
	if err := client.MkdirAll(filepath.Dir(path)); err != nil {
		return fmt.Errorf("fileops: create parent dir for %s: %w", path, err)
	}
	remote, err := client.Create(path)
	if err != nil {
		return fmt.Errorf("fileops: create %s: %w", path, err)
	}
	defer remote.Close()
	if _, err := remote.Write(data); err != nil {
		return fmt.Errorf("fileops: write %s: %w", path, err)
	}
	return nil
}
