/*
Copyright 2024 The KNIME Python Gateway Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmdrunner

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/OlafGroth/knime-python/pkg/common"

	"github.com/nuclio/logger"
)

// RunOptions specifies options to CmdRunner.Run
type RunOptions struct {
	WorkingDir *string
	Stdin      *string
	Env        map[string]string
}

// RunResult holds command execution results
type RunResult struct {
	Output   string
	ExitCode int
}

// CmdRunner specifies the interface to an underlying command runner
type CmdRunner interface {

	// Run runs a command, given options
	Run(options *RunOptions, format string, vars ...interface{}) (RunResult, error)
}

// ShellRunner runs commands through a shell
type ShellRunner struct {
	logger logger.Logger
	shell  string
}

// NewShellRunner creates a new shell runner
func NewShellRunner(parentLogger logger.Logger) (*ShellRunner, error) {
	return &ShellRunner{
		logger: parentLogger.GetChild("runner"),
		shell:  "/bin/sh",
	}, nil
}

// Run runs a command, given options
func (sr *ShellRunner) Run(options *RunOptions, format string, vars ...interface{}) (RunResult, error) {

	// format the command
	command := fmt.Sprintf(format, vars...)
	sr.logger.DebugWith("Executing", "command", command)

	cmd := exec.Command(sr.shell, "-c", command)

	if options != nil {
		if options.WorkingDir != nil {
			cmd.Dir = *options.WorkingDir
		}

		if options.Env != nil {
			cmd.Env = common.MapStringToEnviron(options.Env)
		}

		if options.Stdin != nil {
			cmd.Stdin = strings.NewReader(*options.Stdin)
		}
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		sr.logger.DebugWith("Failed to execute command",
			"output", string(output),
			"err", err)

		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		return RunResult{Output: string(output), ExitCode: exitCode}, err
	}

	stringOutput := string(output)

	sr.logger.DebugWith("Command executed successfully", "output", stringOutput)

	return RunResult{Output: stringOutput, ExitCode: 0}, nil
}

// SetShell sets the shell used to run commands
func (sr *ShellRunner) SetShell(shell string) {
	sr.shell = shell
}
