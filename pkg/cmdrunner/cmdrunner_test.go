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

package cmdrunner

import (
	"testing"

	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type ShellRunnerSuite struct {
	suite.Suite
	runner *ShellRunner
}

func (suite *ShellRunnerSuite) SetupSuite() {
	loggerInstance, err := nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)

	suite.runner, err = NewShellRunner(loggerInstance)
	suite.Require().NoError(err)
}

func (suite *ShellRunnerSuite) TestRun() {
	result, err := suite.runner.Run(nil, "echo %s", "hello")
	suite.Require().NoError(err)
	suite.Require().Equal("hello\n", result.Output)
	suite.Require().Equal(0, result.ExitCode)
}

func (suite *ShellRunnerSuite) TestRunWithEnv() {
	result, err := suite.runner.Run(&RunOptions{
		Env: map[string]string{"KNIME_TEST_VALUE": "42"},
	}, "echo -n $KNIME_TEST_VALUE")
	suite.Require().NoError(err)
	suite.Require().Equal("42", result.Output)
}

func (suite *ShellRunnerSuite) TestRunFailure() {
	_, err := suite.runner.Run(nil, "exit 7")
	suite.Require().Error(err)
}

func (suite *ShellRunnerSuite) TestRunWithStdin() {
	stdin := "from stdin"

	result, err := suite.runner.Run(&RunOptions{Stdin: &stdin}, "cat")
	suite.Require().NoError(err)
	suite.Require().Equal("from stdin", result.Output)
}

func TestShellRunnerSuite(t *testing.T) {
	suite.Run(t, new(ShellRunnerSuite))
}
