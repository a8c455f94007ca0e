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
	"fmt"

	"github.com/OlafGroth/knime-python/pkg/extensions"

	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

func newExtensionsCommand(rootCommandeer *rootCommandeer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extensions",
		Short: "Inspect registered Python extensions",
	}

	cmd.AddCommand(newExtensionsListCommand(rootCommandeer))

	return cmd
}

func newExtensionsListCommand(rootCommandeer *rootCommandeer) *cobra.Command {
	return &cobra.Command{
		Use:   "list <extensions-dir>",
		Short: "Scan a directory tree and list the extensions it declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loggerInstance, err := rootCommandeer.getLogger()
			if err != nil {
				return err
			}

			registry := extensions.NewRegistry(loggerInstance)
			if err := registry.Scan(args[0]); err != nil {
				return errors.Wrap(err, "Failed to scan extensions")
			}

			for _, descriptor := range registry.Descriptors() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n",
					descriptor.Module.ModuleName,
					descriptor.SourceDirectory())

				for _, valueFactory := range descriptor.ValueFactories {
					fmt.Fprintf(cmd.OutOrStdout(), "\t%s -> %s\n",
						valueFactory.PythonClassName,
						valueFactory.JavaValueFactory)
				}
			}

			return nil
		},
	}
}
