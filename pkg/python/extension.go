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

// Extension is a registrable unit of Python code. Its module is imported
// into a gateway's interpreter during startup, in registration order, and may
// self-register capabilities on import. Immutable once the gateway runs
type Extension struct {
	moduleName string
}

// NewExtension creates an extension for the given importable module name
func NewExtension(moduleName string) Extension {
	return Extension{moduleName: moduleName}
}

// ModuleName returns the importable Python module name
func (e Extension) ModuleName() string {
	return e.moduleName
}
