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
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/OlafGroth/knime-python/pkg/common"
	"github.com/OlafGroth/knime-python/pkg/python"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// Registry maps module names to extension descriptors. It is populated by a
// discovery step scanning a directory tree at startup; validation happens
// in-process while scanning
type Registry struct {
	logger logger.Logger

	mu      sync.RWMutex
	byName  map[string]*Descriptor
	ordered []*Descriptor
}

// NewRegistry creates an empty registry
func NewRegistry(parentLogger logger.Logger) *Registry {
	return &Registry{
		logger: parentLogger.GetChild("extensions"),
		byName: map[string]*Descriptor{},
	}
}

// Scan walks rootDir and registers every directory containing a descriptor
// file. Registration order is the walk order (lexical, deterministic)
func (r *Registry) Scan(rootDir string) error {
	if !common.IsDir(rootDir) {
		return errors.Errorf("Extension root %q is not a directory", rootDir)
	}

	return filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() || entry.Name() != DescriptorFileName {
			return nil
		}

		contents, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "Can't read extension descriptor at %q", path)
		}

		descriptor, err := ParseDescriptor(contents, filepath.Dir(path))
		if err != nil {
			return errors.Wrapf(err, "Invalid extension descriptor at %q", path)
		}

		if err := r.Register(descriptor); err != nil {
			return errors.Wrapf(err, "Can't register extension %q from %q",
				descriptor.Module.ModuleName,
				path)
		}

		return nil
	})
}

// Register adds a descriptor, rejecting duplicate module names
func (r *Registry) Register(descriptor *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	moduleName := descriptor.Module.ModuleName
	if _, registered := r.byName[moduleName]; registered {
		return errors.Errorf("Extension module %q is already registered", moduleName)
	}

	r.byName[moduleName] = descriptor
	r.ordered = append(r.ordered, descriptor)

	r.logger.DebugWith("Registered extension",
		"module", moduleName,
		"valueFactories", len(descriptor.ValueFactories))

	return nil
}

// Get looks up a descriptor by module name
func (r *Registry) Get(moduleName string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptor, found := r.byName[moduleName]
	return descriptor, found
}

// Descriptors returns all descriptors in registration order
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]*Descriptor, len(r.ordered))
	copy(descriptors, r.ordered)

	return descriptors
}

// Extensions returns the registrable extensions in registration order, as
// fed to a gateway for pre-loading
func (r *Registry) Extensions() []python.Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extensions := make([]python.Extension, 0, len(r.ordered))
	for _, descriptor := range r.ordered {
		extensions = append(extensions, descriptor.Extension())
	}

	return extensions
}

// PythonPath builds the module search path over all source directories, in
// registration order
func (r *Registry) PythonPath() *python.Path {
	r.mu.RLock()
	defer r.mu.RUnlock()

	builder := python.NewPathBuilder()
	for _, descriptor := range r.ordered {
		builder.Add(descriptor.SourceDirectory())
	}

	return builder.Build()
}

// ValueFactoryForPythonClass resolves a value factory across all registered
// extensions
func (r *Registry) ValueFactoryForPythonClass(pythonClassName string) (ValueFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, descriptor := range r.ordered {
		for _, valueFactory := range descriptor.ValueFactories {
			if valueFactory.PythonClassName == pythonClassName {
				return valueFactory, true
			}
		}
	}

	return ValueFactory{}, false
}
