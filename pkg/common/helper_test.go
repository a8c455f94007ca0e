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

package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	require.True(t, IsFile(file))
	require.False(t, IsFile(dir))
	require.True(t, IsDir(dir))
	require.False(t, IsDir(file))
	require.True(t, FileExists(file))
	require.False(t, FileExists(filepath.Join(dir, "missing")))
}

func TestGetEnvOrDefaultString(t *testing.T) {
	t.Setenv("KNIME_PYTHON_TEST_VAR", "")
	require.Equal(t, "fallback", GetEnvOrDefaultString("KNIME_PYTHON_TEST_VAR", "fallback"))

	t.Setenv("KNIME_PYTHON_TEST_VAR", "configured")
	require.Equal(t, "configured", GetEnvOrDefaultString("KNIME_PYTHON_TEST_VAR", "fallback"))
}

func TestMapToSlice(t *testing.T) {
	require.Equal(t,
		[]interface{}{"a", 1, "b", "two"},
		MapToSlice(map[string]interface{}{"b": "two", "a": 1}))
	require.Empty(t, MapToSlice(nil))
}

func TestMapStringToEnviron(t *testing.T) {
	require.Equal(t,
		[]string{"A=1", "B=2"},
		MapStringToEnviron(map[string]string{"B": "2", "A": "1"}))
}
