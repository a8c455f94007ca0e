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

package packaging

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/OlafGroth/knime-python/pkg/cmdrunner"
	"github.com/OlafGroth/knime-python/pkg/common"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// TargetPlatforms are the conda platforms every package is converted for
var TargetPlatforms = []string{"linux-64", "osx-64", "win-64"}

// RecipeFileName marks a directory as a conda recipe
const RecipeFileName = "meta.yaml"

// buildSubDir is the temporary build area below the output dir
const buildSubDir = ".conda-build"

// Builder builds one conda package per recipe directory and converts the
// artifacts across all target platforms. Conversion is a no-op for the host
// platform, so its artifacts are relocated from the build area instead
type Builder struct {
	logger          logger.Logger
	runner          cmdrunner.CmdRunner
	condaExecutable string
	hostPlatform    string
}

// NewBuilder creates a builder running conda through the given runner
func NewBuilder(parentLogger logger.Logger, runner cmdrunner.CmdRunner) *Builder {
	return &Builder{
		logger:          parentLogger.GetChild("packaging"),
		runner:          runner,
		condaExecutable: common.GetEnvOrDefaultString("CONDA_EXE", "conda"),
		hostPlatform:    HostPlatform(),
	}
}

// HostPlatform returns the conda platform identifier of this machine
func HostPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "osx-arm64"
		}
		return "osx-64"
	case "windows":
		return "win-64"
	default:
		if runtime.GOARCH == "arm64" {
			return "linux-aarch64"
		}
		return "linux-64"
	}
}

// BuildAll iterates the immediate subdirectories of recipesDir holding a
// recipe file, builds each and converts the artifacts. It returns the names
// of the built recipes in order
func (b *Builder) BuildAll(recipesDir string, outputDir string) ([]string, error) {
	entries, err := os.ReadDir(recipesDir)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read recipes dir %q", recipesDir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "Can't create output dir %q", outputDir)
	}

	var built []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		recipeDir := filepath.Join(recipesDir, entry.Name())
		if !common.IsFile(filepath.Join(recipeDir, RecipeFileName)) {
			continue
		}

		b.logger.InfoWith("Building package", "recipe", entry.Name())

		if err := b.buildRecipe(recipeDir, outputDir); err != nil {
			return built, errors.Wrapf(err, "Can't build recipe %q", entry.Name())
		}

		built = append(built, entry.Name())
	}

	return built, nil
}

func (b *Builder) buildRecipe(recipeDir string, outputDir string) error {
	buildDir := filepath.Join(outputDir, buildSubDir, filepath.Base(recipeDir))
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return errors.Wrapf(err, "Can't create build dir %q", buildDir)
	}
	defer os.RemoveAll(buildDir) // nolint: errcheck

	if _, err := b.runner.Run(nil, "%s build %q --output-folder %q",
		b.condaExecutable, recipeDir, buildDir); err != nil {
		return errors.Wrap(err, "conda build failed")
	}

	artifacts, err := filepath.Glob(filepath.Join(buildDir, b.hostPlatform, "*.tar.bz2"))
	if err != nil {
		return errors.Wrap(err, "Can't glob build artifacts")
	}

	if len(artifacts) == 0 {
		b.logger.WarnWith("No artifacts produced", "recipe", recipeDir)
		return nil
	}

	for _, artifact := range artifacts {
		for _, platform := range TargetPlatforms {
			if _, err := b.runner.Run(nil, "%s convert -p %s %q -o %q",
				b.condaExecutable, platform, artifact, outputDir); err != nil {
				return errors.Wrapf(err, "conda convert to %s failed", platform)
			}
		}
	}

	// conversion skips the host platform, so its artifacts stay in the
	// build area and have to be moved over
	hostOutputDir := filepath.Join(outputDir, b.hostPlatform)
	if err := os.MkdirAll(hostOutputDir, 0o755); err != nil {
		return errors.Wrapf(err, "Can't create %q", hostOutputDir)
	}

	for _, artifact := range artifacts {
		target := filepath.Join(hostOutputDir, filepath.Base(artifact))
		if err := os.Rename(artifact, target); err != nil {
			return errors.Wrapf(err, "Can't relocate %q to %q", artifact, target)
		}

		b.logger.DebugWith("Relocated host artifact", "artifact", target)
	}

	return nil
}
