package scheduler

import (
	"path/filepath"
	"strings"

	"github.com/benthomasson/ftl-go/internal/config"
	"github.com/benthomasson/ftl-go/internal/gatebuild"
	"github.com/benthomasson/ftl-go/internal/gatepool"
	"github.com/benthomasson/ftl-go/internal/transport"
)

func buildGateArtifact(cfg *config.Config, moduleDirs []string, repoDir string, moduleNames []string) (string, string, error) {
	path, err := gatebuild.Build(gatebuild.Options{
		Interpreter:      cfg.Gate.DefaultInterp,
		LocalInterpreter: cfg.Gate.LocalInterp,
		ModuleNames:      moduleNames,
		ModuleDirs:       moduleDirs,
		GOARCH:           cfg.Gate.GOARCH,
		CacheDir:         cfg.Gate.CacheDir,
		RepoDir:          repoDir,
	})
	if err != nil {
		return "", "", err
	}
	hash := strings.TrimPrefix(filepath.Base(path), "gate-")
	return path, hash, nil
}

func openRemoteGate(cfg *config.Config, host string, hv map[string]any, artifactPath, hash string) (gatepool.GateSession, error) {
	return transport.Open(hv, cfg.SSH, cfg.Gate.ConnectTimeout, cfg.Gate.RemoteDir, cfg.Gate.DefaultInterp, artifactPath, hash)
}
