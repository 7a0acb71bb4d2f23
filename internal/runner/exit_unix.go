//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// exitCode maps a finished process to a non-negative code, using the shell
// convention 128+signal for processes killed by a signal.
func exitCode(err *exec.ExitError) int {
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return err.ExitCode()
}
