// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/invowk/minipack/pkg/types"
)

type stubRuntime struct {
	name      string
	available bool
	validate  error
	executed  bool
}

func (s *stubRuntime) Name() string { return s.name }

func (s *stubRuntime) Available() bool { return s.available }

func (s *stubRuntime) Validate(*ExecutionContext) error { return s.validate }

func (s *stubRuntime) Execute(*ExecutionContext) *Result {
	s.executed = true
	return NewExitCodeResult(5)
}

func TestRegistry_Execute(t *testing.T) {
	t.Parallel()

	errInvalid := errors.New("invalid bundle")
	tests := []struct {
		name         string
		rt           *stubRuntime
		typ          RuntimeType
		wantErr      error
		wantExecuted bool
		wantCode     types.ExitCode
	}{
		{"runs registered runtime", &stubRuntime{name: "stub", available: true}, "stub", nil, true, 5},
		{"unknown type", &stubRuntime{name: "stub", available: true}, "other", ErrRuntimeNotRegistered, false, 1},
		{"unavailable", &stubRuntime{name: "stub"}, "stub", ErrRuntimeUnavailable, false, 1},
		{"validation failure", &stubRuntime{name: "stub", available: true, validate: errInvalid}, "stub", errInvalid, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRegistry()
			r.Register("stub", tt.rt)
			result := r.Execute(tt.typ, NewExecutionContext(context.Background(), "x"))

			if tt.wantErr != nil && !errors.Is(result.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", result.Error, tt.wantErr)
			}
			if tt.wantErr == nil && result.Error != nil {
				t.Errorf("Error = %v, want nil", result.Error)
			}
			if result.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %v, want %v", result.ExitCode, tt.wantCode)
			}
			if tt.rt.executed != tt.wantExecuted {
				t.Errorf("executed = %v, want %v", tt.rt.executed, tt.wantExecuted)
			}
		})
	}
}

func TestRegistry_Available(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("b", &stubRuntime{available: true})
	r.Register("a", &stubRuntime{available: true})
	r.Register("c", &stubRuntime{})

	if got, want := r.Available(), []RuntimeType{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	for _, typ := range []RuntimeType{RuntimeTypeVirtual, RuntimeTypeNative} {
		rt, err := r.Get(typ)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", typ, err)
		}
		if rt.Name() != string(typ) {
			t.Errorf("Name() = %q, want %q", rt.Name(), typ)
		}
	}
	if !slices.Contains(r.Available(), RuntimeTypeVirtual) {
		t.Error("virtual runtime should always be available")
	}
}

func TestResult_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *Result
		want   bool
	}{
		{"zero", &Result{}, true},
		{"exit code", NewExitCodeResult(2), false},
		{"error", NewErrorResult(types.ExitSuccess, errors.New("x")), false},
	}
	for _, tt := range tests {
		if got := tt.result.Success(); got != tt.want {
			t.Errorf("%s: Success() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEnvToSlice(t *testing.T) {
	t.Parallel()

	got := EnvToSlice(map[string]string{"B": "2", "A": "1", "C": "x=y"})
	want := []string{"A=1", "B=2", "C=x=y"}
	if !slices.Equal(got, want) {
		t.Errorf("EnvToSlice() = %v, want %v", got, want)
	}
}

func TestBuildEnv_ExtraOverridesHost(t *testing.T) {
	t.Setenv("MINIPACK_RUNTIME_TEST", "host")

	env := buildEnv(map[string]string{"MINIPACK_RUNTIME_TEST": "extra", "MINIPACK_ONLY_EXTRA": "1"})
	if env["MINIPACK_RUNTIME_TEST"] != "extra" {
		t.Errorf("override = %q, want extra", env["MINIPACK_RUNTIME_TEST"])
	}
	if env["MINIPACK_ONLY_EXTRA"] != "1" {
		t.Errorf("extra var missing")
	}
}
