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

// DebugOptions configures remote-side debugging
type DebugOptions struct {

	// PydevdModuleDir is the directory holding the pydevd module. May be
	// empty when EnableBreakpoints is false
	PydevdModuleDir string

	// EnableBreakpoints enables breakpoint support via pydevd
	EnableBreakpoints bool

	// EnableDebugLog enables debug-level logging on the remote side
	EnableDebugLog bool

	// DebugLogToStderr redirects the remote debug log to standard error
	DebugLogToStderr bool
}

// EntryPoint is the base contract every remote entry point implements.
// Invoking any method crosses the process boundary; methods are synchronous
// and serialized, one call in flight at a time
type EntryPoint interface {

	// Pid returns the process identifier of the interpreter process
	Pid() (int, error)

	// EnableDebugging enables debug mode on the remote side
	EnableDebugging(options DebugOptions) error

	// RegisterExtensions imports the given modules in order. Each module may
	// self-register capabilities during import
	RegisterExtensions(moduleNames []string) error
}

// BaseEntryPoint implements EntryPoint over a proxy. Entry points with
// additional methods embed it and invoke through Proxy()
type BaseEntryPoint struct {
	proxy *Proxy
}

// NewBaseEntryPoint creates a base entry point over the given proxy
func NewBaseEntryPoint(proxy *Proxy) *BaseEntryPoint {
	return &BaseEntryPoint{proxy: proxy}
}

// Proxy returns the underlying proxy, for embedders adding methods
func (ep *BaseEntryPoint) Proxy() *Proxy {
	return ep.proxy
}

// Pid returns the process identifier of the interpreter process
func (ep *BaseEntryPoint) Pid() (int, error) {
	var pid int
	if err := ep.proxy.Invoke("getPid", nil, &pid); err != nil {
		return 0, err
	}

	return pid, nil
}

// EnableDebugging enables debug mode on the remote side
func (ep *BaseEntryPoint) EnableDebugging(options DebugOptions) error {
	return ep.proxy.Invoke("enableDebugging", []interface{}{
		options.PydevdModuleDir,
		options.EnableBreakpoints,
		options.EnableDebugLog,
		options.DebugLogToStderr,
	}, nil)
}

// RegisterExtensions imports the given modules in order
func (ep *BaseEntryPoint) RegisterExtensions(moduleNames []string) error {
	if moduleNames == nil {
		moduleNames = []string{}
	}

	return ep.proxy.Invoke("registerExtensions", []interface{}{moduleNames}, nil)
}
