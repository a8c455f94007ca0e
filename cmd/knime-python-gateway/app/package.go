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

package app

import (
	"github.com/OlafGroth/knime-python/pkg/cmdrunner"
	"github.com/OlafGroth/knime-python/pkg/packaging"

	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

func newPackageCommand(rootCommandeer *rootCommandeer) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "package <recipes-dir>",
		Short: "Build conda packages for every recipe directory and convert them across platforms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loggerInstance, err := rootCommandeer.getLogger()
			if err != nil {
				return err
			}

			runner, err := cmdrunner.NewShellRunner(loggerInstance)
			if err != nil {
				return errors.Wrap(err, "Failed to create command runner")
			}

			builder := packaging.NewBuilder(loggerInstance, runner)

			built, err := builder.BuildAll(args[0], outputDir)
			if err != nil {
				return errors.Wrap(err, "Failed to build packages")
			}

			loggerInstance.InfoWith("Packages built", "recipes", built, "outputDir", outputDir)

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "dist", "Directory receiving the converted artifacts")

	return cmd
}
