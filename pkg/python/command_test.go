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
	"path/filepath"
	"testing"

	"github.com/nuclio/errors"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/require"
)

func writeFakeInterpreter(t *testing.T, dir string, name string) string {
	executable := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(executable, []byte("#!/bin/sh\n"), 0o755))
	return executable
}

func TestResolveCommandRequiresEnvVar(t *testing.T) {
	t.Setenv(ExecutablePathEnvVar, "")

	command, err := ResolveCommand()
	require.Error(t, err)
	require.Nil(t, command)
	require.Equal(t, ErrNoPythonExecutable, errors.RootCause(err))
	require.Contains(t, err.Error(), ExecutablePathEnvVar)
}

func TestResolveCommandUsesEnvVar(t *testing.T) {
	t.Setenv(ExecutablePathEnvVar, "/opt/conda/bin/python3")

	command, err := ResolveCommand()
	require.NoError(t, err)
	require.Equal(t, "/opt/conda/bin/python3", command.ExecutablePath())
}

func TestFindCommandPrefersEnvVar(t *testing.T) {
	loggerInstance, err := nucliozap.NewNuclioZapTest("test")
	require.NoError(t, err)

	executable := writeFakeInterpreter(t, t.TempDir(), "python3")
	t.Setenv(ExecutablePathEnvVar, executable)

	command, err := FindCommand(loggerInstance)
	require.NoError(t, err)
	require.Equal(t, executable, command.ExecutablePath())
}

func TestFindCommandFallsBackToPath(t *testing.T) {
	loggerInstance, err := nucliozap.NewNuclioZapTest("test")
	require.NoError(t, err)

	binDir := t.TempDir()
	executable := writeFakeInterpreter(t, binDir, "python3")

	t.Setenv(ExecutablePathEnvVar, "")
	t.Setenv("PATH", binDir)

	command, err := FindCommand(loggerInstance)
	require.NoError(t, err)
	require.Equal(t, executable, command.ExecutablePath())
}

func TestFindCommandWithoutInterpreter(t *testing.T) {
	loggerInstance, err := nucliozap.NewNuclioZapTest("test")
	require.NoError(t, err)

	t.Setenv(ExecutablePathEnvVar, "")
	t.Setenv("PATH", t.TempDir())

	_, err = FindCommand(loggerInstance)
	require.Error(t, err)
	require.Equal(t, ErrNoPythonExecutable, errors.RootCause(err))
}

func TestCommandEnvIsCopied(t *testing.T) {
	env := map[string]string{"KNIME_LOG_LEVEL": "debug"}
	command := NewCommand("/usr/bin/python3", env)

	env["KNIME_LOG_LEVEL"] = "changed"
	require.Equal(t, "debug", command.Env()["KNIME_LOG_LEVEL"])

	// mutating the returned copy must not leak back in
	command.Env()["KNIME_LOG_LEVEL"] = "changed again"
	require.Equal(t, "debug", command.Env()["KNIME_LOG_LEVEL"])
}
