//go:build unix

package tools

import (
	"os"
	"os/exec"
	"syscall"
)

// killProcessGroup starts proc in its own process group and makes
// cancellation signal the group rather than only the direct child
func killProcessGroup(proc *exec.Cmd) {
	proc.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	proc.Cancel = func() error {
		if proc.Process == nil {
			return nil
		}
		err := syscall.Kill(-proc.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
}
