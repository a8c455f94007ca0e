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
	"os"
	"path/filepath"
	"testing"

	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type RegistrySuite struct {
	suite.Suite
	logger  logger.Logger
	rootDir string
}

func (suite *RegistrySuite) SetupSuite() {
	var err error
	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)
}

func (suite *RegistrySuite) SetupTest() {
	suite.rootDir = suite.T().TempDir()
}

func (suite *RegistrySuite) writeDescriptor(dir string, contents string) {
	fullDir := filepath.Join(suite.rootDir, dir)
	suite.Require().NoError(os.MkdirAll(fullDir, 0o755))
	suite.Require().NoError(os.WriteFile(
		filepath.Join(fullDir, DescriptorFileName),
		[]byte(contents),
		0o644))
}

func (suite *RegistrySuite) TestScanRegistersInLexicalOrder() {
	suite.writeDescriptor("b_ext", `
module:
  modulePath: src
  moduleName: ext_b
`)
	suite.writeDescriptor("a_ext", `
module:
  modulePath: src
  moduleName: ext_a
valueFactories:
  - pythonClassName: LocalDateTimeValueFactory
    javaValueFactory: org.knime.core.data.v2.time.LocalDateTimeValueFactory
    isDefaultRepresentation: true
`)

	registry := NewRegistry(suite.logger)
	suite.Require().NoError(registry.Scan(suite.rootDir))

	descriptors := registry.Descriptors()
	suite.Require().Len(descriptors, 2)
	suite.Require().Equal("ext_a", descriptors[0].Module.ModuleName)
	suite.Require().Equal("ext_b", descriptors[1].Module.ModuleName)

	extensions := registry.Extensions()
	suite.Require().Equal("ext_a", extensions[0].ModuleName())
	suite.Require().Equal("ext_b", extensions[1].ModuleName())

	pythonPath := registry.PythonPath()
	suite.Require().Equal([]string{
		filepath.Join(suite.rootDir, "a_ext", "src"),
		filepath.Join(suite.rootDir, "b_ext", "src"),
	}, pythonPath.Entries())
}

func (suite *RegistrySuite) TestScanRejectsMissingModuleName() {
	suite.writeDescriptor("broken", `
module:
  modulePath: src
`)

	registry := NewRegistry(suite.logger)
	err := registry.Scan(suite.rootDir)
	suite.Require().Error(err)
	suite.Require().Contains(err.Error(), filepath.Join(suite.rootDir, "broken", DescriptorFileName))
}

func (suite *RegistrySuite) TestScanRejectsDuplicateModules() {
	suite.writeDescriptor("one", `
module:
  modulePath: src
  moduleName: ext_dup
`)
	suite.writeDescriptor("two", `
module:
  modulePath: src
  moduleName: ext_dup
`)

	registry := NewRegistry(suite.logger)
	err := registry.Scan(suite.rootDir)
	suite.Require().Error(err)
	suite.Require().Contains(err.Error(), "ext_dup")
}

func (suite *RegistrySuite) TestScanRejectsValueFactoryWithoutClassName() {
	suite.writeDescriptor("factory", `
module:
  modulePath: src
  moduleName: ext_vf
valueFactories:
  - javaValueFactory: org.example.SomeFactory
`)

	registry := NewRegistry(suite.logger)
	suite.Require().Error(registry.Scan(suite.rootDir))
}

func (suite *RegistrySuite) TestScanRequiresDirectory() {
	registry := NewRegistry(suite.logger)
	suite.Require().Error(registry.Scan(filepath.Join(suite.rootDir, "does-not-exist")))
}

func (suite *RegistrySuite) TestValueFactoryLookup() {
	suite.writeDescriptor("types", `
module:
  modulePath: src
  moduleName: ext_types
valueFactories:
  - pythonClassName: ZonedDateTimeValueFactory
    javaValueFactory: org.knime.core.data.v2.time.ZonedDateTimeValueFactory2
`)

	registry := NewRegistry(suite.logger)
	suite.Require().NoError(registry.Scan(suite.rootDir))

	valueFactory, found := registry.ValueFactoryForPythonClass("ZonedDateTimeValueFactory")
	suite.Require().True(found)
	suite.Require().Equal("org.knime.core.data.v2.time.ZonedDateTimeValueFactory2", valueFactory.JavaValueFactory)

	_, found = registry.ValueFactoryForPythonClass("NoSuchFactory")
	suite.Require().False(found)
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}
