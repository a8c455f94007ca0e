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

package python

import (
	"os"
	"os/exec"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// ExecutablePathEnvVar names the environment variable that points at the
// Python 3 executable to launch
const ExecutablePathEnvVar = "PYTHON3_EXEC_PATH"

// ErrNoPythonExecutable is returned when no Python executable can be resolved
var ErrNoPythonExecutable = errors.New("No Python executable configured")

// Command describes how to locate and launch a Python interpreter. It is
// immutable and constructed once per gateway
type Command struct {
	executablePath string
	env            map[string]string
}

// NewCommand creates a command for the given executable path with optional
// environment overrides
func NewCommand(executablePath string, env map[string]string) *Command {
	envCopy := make(map[string]string, len(env))
	for name, value := range env {
		envCopy[name] = value
	}

	return &Command{
		executablePath: executablePath,
		env:            envCopy,
	}
}

// ResolveCommand creates a command from the path in the env var
// PYTHON3_EXEC_PATH. A missing variable is a configuration error and no
// process is spawned
func ResolveCommand() (*Command, error) {
	executablePath := os.Getenv(ExecutablePathEnvVar)
	if executablePath == "" {
		return nil, errors.Wrapf(ErrNoPythonExecutable,
			"Please set the environment variable %q to the path of the Python 3 executable",
			ExecutablePathEnvVar)
	}

	return NewCommand(executablePath, nil), nil
}

// FindCommand resolves a command from PYTHON3_EXEC_PATH if set, falling back
// to python3 / python on the PATH
func FindCommand(parentLogger logger.Logger) (*Command, error) {
	if executablePath := os.Getenv(ExecutablePathEnvVar); executablePath != "" {
		resolvedPath, err := exec.LookPath(executablePath)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't find Python executable at %q", executablePath)
		}
		return NewCommand(resolvedPath, nil), nil
	}

	exePath, err := exec.LookPath("python3")
	if err == nil {
		return NewCommand(exePath, nil), nil
	}

	parentLogger.WarnWith("Can't find specific python exe", "name", "python3")

	// Try just "python"
	exePath, err = exec.LookPath("python")
	if err == nil {
		return NewCommand(exePath, nil), nil
	}

	return nil, errors.Wrap(ErrNoPythonExecutable, "Can't find python executable on PATH")
}

// ExecutablePath returns the path of the Python executable
func (c *Command) ExecutablePath() string {
	return c.executablePath
}

// Env returns a copy of the environment overrides applied when launching
func (c *Command) Env() map[string]string {
	envCopy := make(map[string]string, len(c.env))
	for name, value := range c.env {
		envCopy[name] = value
	}

	return envCopy
}
