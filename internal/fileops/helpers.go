package fileops

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/benthomasson/ftl-go/internal/config"
	"github.com/benthomasson/ftl-go/internal/transport"
	"golang.org/x/crypto/ssh"
)

func dialForFileops(hostVars map[string]any, sshCfg config.SSHConfig, timeout time.Duration) (*ssh.Client, error) {
	client, err := transport.Dial(hostVars, sshCfg, timeout)
	if err != nil {
		return nil, fmt.Errorf("fileops: dial: %w", err)
	}
	return client, nil
}

func renderTemplate(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("fileops: render template: %w", err)
	}
	return buf.Bytes(), nil
}
