package apps

import (
	"errors"
	"os/exec"
	"path/filepath"
)

// Process is a running managed application.
type Process struct {
	app string
	cmd *exec.Cmd
}

// Spawn starts the tool's executable with the given arguments. Disabled
// tools and tools whose executable is missing fail with ErrAppNotFound
// without starting anything. The working directory is the executable's
// directory, which portable Windows tools expect.
func Spawn(app Application, args ...string) (*Process, error) {
	if !app.Enabled() {
		return nil, wrap(ErrAppNotFound, app.Name(), "spawn", errors.New("disabled"))
	}
	if !ExecutableExists(app) {
		return nil, wrap(ErrAppNotFound, app.Name(), "spawn", errors.New("executable missing"))
	}
	exe, err := ExecutablePath(app)
	if err != nil {
		return nil, wrap(ErrAppNotFound, app.Name(), "spawn", err)
	}

	cmd := exec.Command(exe, args...)
	cmd.Dir = filepath.Dir(exe)
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{App: app.Name(), Detail: err.Error(), Err: err}
	}
	return &Process{app: app.Name(), cmd: cmd}, nil
}

// App returns the name of the application the process belongs to.
func (p *Process) App() string { return p.app }

// PID returns the operating system process id.
func (p *Process) PID() int {
	if p == nil || p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Wait blocks until the process exits and returns its exit code. A non-zero
// exit is not an error. Failure of the wait call itself returns ErrAppWait.
func (p *Process) Wait() (int, error) {
	if p == nil || p.cmd == nil {
		return -1, wrap(ErrAppWait, "", "wait", errors.New("process not started"))
	}
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, wrap(ErrAppWait, p.app, "wait", err)
}
