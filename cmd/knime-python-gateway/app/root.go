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
	"os"

	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/spf13/cobra"
)

type rootCommandeer struct {
	cmd     *cobra.Command
	logger  logger.Logger
	verbose bool
}

// NewRootCommand returns the CLI root command
func NewRootCommand() *cobra.Command {
	commandeer := &rootCommandeer{}

	cmd := &cobra.Command{
		Use:           "knime-python-gateway",
		Short:         "Manage Python gateway processes, extensions and packages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&commandeer.verbose, "verbose", "v", false, "Enable debug logging")

	commandeer.cmd = cmd

	cmd.AddCommand(
		newRunCommand(commandeer),
		newExtensionsCommand(commandeer),
		newPackageCommand(commandeer),
	)

	return cmd
}

func (rc *rootCommandeer) getLogger() (logger.Logger, error) {
	if rc.logger != nil {
		return rc.logger, nil
	}

	level := nucliozap.InfoLevel
	if rc.verbose {
		level = nucliozap.DebugLevel
	}

	newLogger, err := nucliozap.NewNuclioZapCmd("knime-python-gateway", level, os.Stdout)
	if err != nil {
		return nil, err
	}

	rc.logger = newLogger

	return rc.logger, nil
}
