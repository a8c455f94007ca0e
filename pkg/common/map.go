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
	"fmt"
	"sort"
)

// MapToSlice converts {key1: val1, key2: val2 ...} to [key1, val1, key2, val2 ...]
// in deterministic key order
func MapToSlice(m map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]interface{}, 0, 2*len(m))
	for _, key := range keys {
		out = append(out, key, m[key])
	}

	return out
}

// MapStringToEnviron converts {name: value ...} to ["name=value" ...] as
// accepted by exec.Cmd.Env, in deterministic key order
func MapStringToEnviron(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	envs := make([]string, 0, len(m))
	for _, key := range keys {
		envs = append(envs, fmt.Sprintf("%s=%s", key, m[key]))
	}

	return envs
}
