//go:build !unix

package execshell

import (
	"os"
	"os/exec"
)

func configureProcessGroup(executable *exec.Cmd) {}

func exitStatusCode(processState *os.ProcessState) int {
	return processState.ExitCode()
}
