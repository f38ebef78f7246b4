// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

func TestWriteTree(t *testing.T) {
	t.Parallel()

	root := WriteTree(t, t.TempDir(), map[string]string{
		"index.ts":        "import './lib/a'\n",
		"lib/a.ts":        "export {}\n",
		"lib/deep/b.json": "{}",
	})

	for name, want := range map[string]string{
		"index.ts":        "import './lib/a'\n",
		"lib/a.ts":        "export {}\n",
		"lib/deep/b.json": "{}",
	} {
		if got := MustReadFile(t, filepath.Join(root, filepath.FromSlash(name))); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestContainerParallelism(t *testing.T) {
	t.Setenv("MINIPACK_TEST_CONTAINER_PARALLEL", "5")
	if got := containerParallelism(); got != 5 {
		t.Errorf("containerParallelism() = %d, want 5", got)
	}

	t.Setenv("MINIPACK_TEST_CONTAINER_PARALLEL", "zero")
	if got := containerParallelism(); got < 1 || got > 2 {
		t.Errorf("containerParallelism() = %d, want fallback in [1, 2]", got)
	}
}
