// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/invowk/minipack/pkg/types"
)

func requireNode(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(DefaultNodeBinary); err != nil {
		t.Skip("skipping: node not found on PATH")
	}
}

func TestNativeRuntime_Execute(t *testing.T) {
	t.Parallel()
	requireNode(t)

	ectx := NewExecutionContext(t.Context(), `
console.log(process.argv.slice(2).join(","));
console.log(process.env.MINIPACK_GREETING);
process.exitCode = 3;
`)
	ectx.Args = []string{"a", "b"}
	ectx.Env = map[string]string{"MINIPACK_GREETING": "hi"}

	result := NewNativeRuntime().ExecuteCapture(ectx)
	if result.Error != nil {
		t.Fatalf("Error = %v (stderr %q)", result.Error, result.ErrOutput)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %v, want 3", result.ExitCode)
	}
	if result.Output != "a,b\nhi\n" {
		t.Errorf("stdout = %q", result.Output)
	}
}

func TestNativeRuntime_MissingBinary(t *testing.T) {
	t.Parallel()

	rt := &NativeRuntime{Node: "minipack-no-such-node-binary"}
	if rt.Available() {
		t.Fatal("Available() = true for missing binary")
	}
	result := rt.Execute(NewExecutionContext(t.Context(), `1`))
	if !errors.Is(result.Error, ErrRuntimeUnavailable) {
		t.Errorf("Error = %v, want ErrRuntimeUnavailable", result.Error)
	}
}

func TestExtractExitCode(t *testing.T) {
	t.Parallel()

	if r := extractExitCode(nil); !r.Success() {
		t.Errorf("extractExitCode(nil) = %+v, want success", r)
	}
	r := extractExitCode(errors.New("spawn failed"))
	if r.ExitCode != types.ExitFailure || r.Error == nil {
		t.Errorf("extractExitCode(spawn error) = %+v", r)
	}
}
