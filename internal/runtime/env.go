// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"os"
	"slices"
	"strings"
)

// EnvToSlice converts a map of environment variables to a KEY=VALUE slice
// sorted by key.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// buildEnv merges the host environment with extra. Values in extra win.
func buildEnv(extra map[string]string) map[string]string {
	env := make(map[string]string, len(extra))
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	for k, v := range extra {
		env[k] = v
	}
	return env
}
