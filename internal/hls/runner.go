package hls

import (
	"bytes"
	"fmt"
	"os/exec"
)

// Process is a handle to a running encoder process.
type Process interface {
	// Wait blocks until the process exits. A non-zero exit status is
	// returned as an error carrying the process stderr.
	Wait() error
	// Kill terminates the process immediately.
	Kill() error
}

// Runner starts encoder processes. It exists so tests can substitute a
// fake for the real ffmpeg binary.
type Runner interface {
	Start(name string, args []string) (Process, error)
}

// ExecRunner runs processes via os/exec.
type ExecRunner struct{}

type execProcess struct {
	cmd    *exec.Cmd
	stderr *bytes.Buffer
}

func (p *execProcess) Wait() error {
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("%w - %s", err, p.stderr.String())
	}
	return nil
}

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Start launches the named binary with the given arguments. Stderr is
// captured so encode failures can be reported with context.
func (ExecRunner) Start(name string, args []string) (Process, error) {
	cmd := exec.Command(name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	return &execProcess{cmd: cmd, stderr: &stderr}, nil
}
