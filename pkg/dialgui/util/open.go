package util

import (
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"
)

// OpenExternal spawns the platform's default handler for path (e.g. a text editor for config.yaml)
func OpenExternal(logger *zap.SugaredLogger, path string) error {
	name, args := openCommand(runtime.GOOS, path)

	command := exec.Command(name, args...)
	if err := command.Start(); err != nil {
		logger.Warnw("Failed to spawn external program",
			"command", name,
			"args", args,
			"error", err)

		return fmt.Errorf("spawn external program: %w", err)
	}

	logger.Debugw("Spawned external program", "command", name, "args", args)

	return nil
}

func openCommand(goos string, path string) (string, []string) {
	switch goos {
	case "windows":
		return "cmd.exe", []string{"/C", "start", "", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}
