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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/OlafGroth/knime-python/pkg/extensions"
	"github.com/OlafGroth/knime-python/pkg/python"
	"github.com/OlafGroth/knime-python/pkg/python/gateway"
	"github.com/OlafGroth/knime-python/pkg/python/gateway/encoder"

	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

func newRunCommand(rootCommandeer *rootCommandeer) *cobra.Command {
	var launcherPath string
	var extensionsDir string
	var encoding string
	var useTCP bool
	var debug bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a Python gateway and keep it alive until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			loggerInstance, err := rootCommandeer.getLogger()
			if err != nil {
				return err
			}

			command, err := python.FindCommand(loggerInstance)
			if err != nil {
				return err
			}

			config := gateway.Config{
				Command:      command,
				LauncherPath: launcherPath,
				Encoding:     encoder.Kind(encoding),
			}

			if useTCP {
				config.SocketType = gateway.TCPSocket
			}

			if extensionsDir != "" {
				registry := extensions.NewRegistry(loggerInstance)
				if err := registry.Scan(extensionsDir); err != nil {
					return errors.Wrap(err, "Failed to scan extensions")
				}

				config.Extensions = registry.Extensions()
				config.PythonPath = registry.PythonPath()
			}

			gatewayInstance, err := gateway.Open(context.Background(),
				loggerInstance,
				config,
				func(proxy *gateway.Proxy) *gateway.BaseEntryPoint {
					return gateway.NewBaseEntryPoint(proxy)
				})
			if err != nil {
				return errors.Wrap(err, "Failed to open gateway")
			}
			defer gatewayInstance.Close() // nolint: errcheck

			if debug {
				if err := gatewayInstance.EntryPoint().EnableDebugging(gateway.DebugOptions{
					EnableDebugLog:   true,
					DebugLogToStderr: true,
				}); err != nil {
					return errors.Wrap(err, "Failed to enable debugging")
				}
			}

			remotePid, err := gatewayInstance.EntryPoint().Pid()
			if err != nil {
				return errors.Wrap(err, "Failed to query interpreter pid")
			}

			loggerInstance.InfoWith("Gateway ready",
				"pid", gatewayInstance.Pid(),
				"remotePid", remotePid)

			signalChan := make(chan os.Signal, 1)
			signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
			<-signalChan

			loggerInstance.Info("Shutting down")

			return gatewayInstance.Close()
		},
	}

	cmd.Flags().StringVar(&launcherPath, "launcher", "", "Path to a launcher script (default: embedded launcher)")
	cmd.Flags().StringVar(&extensionsDir, "extensions-dir", "", "Directory tree scanned for extension descriptors")
	cmd.Flags().StringVar(&encoding, "encoding", string(encoder.JSONKind), "Call wire encoding (json or msgpack)")
	cmd.Flags().BoolVar(&useTCP, "tcp", false, "Use a TCP socket instead of a unix domain socket")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable remote debug logging")

	return cmd
}
