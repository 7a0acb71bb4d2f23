//go:build unix

package forward

import (
	"os/exec"
	"syscall"
)

// detach puts the helper in its own session so it survives our exit.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
