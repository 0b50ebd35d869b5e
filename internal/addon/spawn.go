package addon

import (
	"context"
	"os/exec"
)

// ExecSpawner runs script filter commands as real subprocesses. Killing
// is driven entirely through the context: when the engine supersedes a
// run, exec kills the process group for us.
type ExecSpawner struct{}

func (ExecSpawner) Run(ctx context.Context, command string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	return cmd.Output()
}
