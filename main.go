package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/procexec/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
	failureExitCodeConstant   = 1
)

type exitCoder interface {
	ExitCode() int
}

// main executes the procexec command-line application and mirrors the executed command's exit status.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	var commandExit exitCoder
	if errors.As(executionError, &commandExit) {
		os.Exit(commandExit.ExitCode())
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(failureExitCodeConstant)
}
