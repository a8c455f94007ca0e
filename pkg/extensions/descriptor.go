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

package extensions

import (
	"path/filepath"

	"github.com/OlafGroth/knime-python/pkg/python"

	"github.com/mitchellh/mapstructure"
	"github.com/nuclio/errors"
	"sigs.k8s.io/yaml"
)

// DescriptorFileName is the file a directory must contain to be picked up as
// an extension
const DescriptorFileName = "knime-extension.yaml"

// Module identifies the importable unit of an extension
type Module struct {

	// ModulePath is the directory holding the module, relative to the
	// descriptor file
	ModulePath string `json:"modulePath"`

	// ModuleName is the importable Python module name
	ModuleName string `json:"moduleName"`
}

// ValueFactory maps a Python class to an optional Java-side value factory
// for columnar data exchange
type ValueFactory struct {
	PythonClassName         string `json:"pythonClassName"`
	JavaValueFactory        string `json:"javaValueFactory,omitempty"`
	IsDefaultRepresentation bool   `json:"isDefaultRepresentation,omitempty"`
}

// Descriptor declares one Python extension
type Descriptor struct {
	Module         Module         `json:"module"`
	ValueFactories []ValueFactory `json:"valueFactories,omitempty"`

	// dir is where the descriptor file was found
	dir string
}

// ParseDescriptor parses and validates a descriptor from its YAML contents.
// dir is the directory holding the descriptor file
func ParseDescriptor(contents []byte, dir string) (*Descriptor, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(contents, &raw); err != nil {
		return nil, errors.Wrap(err, "Can't parse extension descriptor")
	}

	descriptor := &Descriptor{dir: dir}
	if err := mapstructure.Decode(raw, descriptor); err != nil {
		return nil, errors.Wrap(err, "Can't decode extension descriptor")
	}

	if err := descriptor.validate(); err != nil {
		return nil, err
	}

	return descriptor, nil
}

// Dir returns the directory the descriptor was found in
func (d *Descriptor) Dir() string {
	return d.dir
}

// SourceDirectory returns the module root to expose on the Python path
func (d *Descriptor) SourceDirectory() string {
	return filepath.Join(d.dir, d.Module.ModulePath)
}

// Extension returns the registrable extension for this descriptor
func (d *Descriptor) Extension() python.Extension {
	return python.NewExtension(d.Module.ModuleName)
}

func (d *Descriptor) validate() error {
	if d.Module.ModulePath == "" {
		return errors.New("Extension descriptor requires module.modulePath")
	}

	if d.Module.ModuleName == "" {
		return errors.New("Extension descriptor requires module.moduleName")
	}

	for _, valueFactory := range d.ValueFactories {
		if valueFactory.PythonClassName == "" {
			return errors.New("Value factory requires pythonClassName")
		}
	}

	return nil
}
