//go:build unix

package execshell

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

const signalExitCodeOffsetConstant = 128

// configureProcessGroup places the shell in its own process group so cancellation reaches every descendant.
func configureProcessGroup(executable *exec.Cmd) {
	executable.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	executable.Cancel = func() error {
		if executable.Process == nil {
			return nil
		}
		killError := unix.Kill(-executable.Process.Pid, unix.SIGKILL)
		if errors.Is(killError, unix.ESRCH) {
			return os.ErrProcessDone
		}
		return killError
	}
}

// exitStatusCode mirrors the shell's $? convention, reporting 128 plus the signal number for signaled processes.
func exitStatusCode(processState *os.ProcessState) int {
	if waitStatus, isWaitStatus := processState.Sys().(syscall.WaitStatus); isWaitStatus && waitStatus.Signaled() {
		return signalExitCodeOffsetConstant + int(waitStatus.Signal())
	}
	return processState.ExitCode()
}
