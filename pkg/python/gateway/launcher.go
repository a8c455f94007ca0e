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

package gateway

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/nuclio/errors"
)

// LauncherPathEnvVar optionally points at a launcher script to use instead
// of the embedded one
const LauncherPathEnvVar = "KNIME_PYTHON_LAUNCHER_PATH"

//go:embed py/launcher.py
var launcherSource []byte

// MaterializeLauncher writes the embedded launcher script into dir and
// returns its path. Callers honoring KNIME_PYTHON_LAUNCHER_PATH should check
// it first via ResolveLauncherPath
func MaterializeLauncher(dir string) (string, error) {
	launcherPath := filepath.Join(dir, "_knime_launcher.py")

	if err := os.WriteFile(launcherPath, launcherSource, 0o644); err != nil {
		return "", errors.Wrapf(err, "Can't write launcher to %q", launcherPath)
	}

	return launcherPath, nil
}

// ResolveLauncherPath returns the configured launcher script path, or empty
// when the embedded launcher should be used
func ResolveLauncherPath() string {
	return os.Getenv(LauncherPathEnvVar)
}
