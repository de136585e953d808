//go:build unix

package encoder

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts ffmpeg in its own group so a deadline kill also takes
// down anything it spawned.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
