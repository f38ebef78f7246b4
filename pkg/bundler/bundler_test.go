// SPDX-License-Identifier: MPL-2.0

package bundler_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"

	"github.com/invowk/minipack/internal/testutil"
	"github.com/invowk/minipack/pkg/bundler"
	"github.com/invowk/minipack/pkg/emit"
	"github.com/invowk/minipack/pkg/modgraph"
	"github.com/invowk/minipack/pkg/modgraph/modgraphtest"
)

// run executes code with a console.log that collects its arguments.
func run(t *testing.T, code string) []string {
	t.Helper()
	vm := goja.New()
	var lines []string
	console := vm.NewObject()
	if err := console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		lines = append(lines, strings.Join(parts, " "))
		return goja.Undefined()
	}); err != nil {
		t.Fatalf("install console.log: %v", err)
	}
	if err := vm.Set("console", console); err != nil {
		t.Fatalf("install console: %v", err)
	}
	if _, err := vm.RunString(code); err != nil {
		t.Fatalf("bundle failed: %v\n%s", err, code)
	}
	return lines
}

func TestBundle_EndToEnd(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"index.ts": "import {x} from \"./a\"\nconsole.log(x)\n",
		"a.ts":     "export const x = 1\n",
	})

	for _, minify := range []bool{true, false} {
		res, err := bundler.Bundle(context.Background(), filepath.Join(root, "index.ts"), bundler.WithMinify(minify))
		if err != nil {
			t.Fatalf("minify=%v: Bundle() error: %v", minify, err)
		}
		if res.Graph.Len() != 2 {
			t.Fatalf("minify=%v: graph has %d modules, want 2", minify, res.Graph.Len())
		}
		if id, _ := res.Graph.Entry().Dependencies.Get("./a"); id != 1 {
			t.Errorf("minify=%v: ./a resolved to %d, want 1", minify, id)
		}
		if len(res.Diagnostics) != 0 {
			t.Errorf("minify=%v: unexpected diagnostics %+v", minify, res.Diagnostics)
		}
		if got := run(t, res.Code); len(got) != 1 || got[0] != "1" {
			t.Errorf("minify=%v: console output %v, want [1]", minify, got)
		}
	}
}

func TestBundle_MinifyShrinksOutput(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"main.ts":  "import {greet} from './greet'\nconsole.log(greet('world'))\n",
		"greet.ts": "export function greet(name: string): string {\n  const greeting = 'hello ' + name\n  return greeting\n}\n",
	})

	plain, err := bundler.Bundle(context.Background(), "main", bundler.WithBaseDir(root), bundler.WithMinify(false))
	if err != nil {
		t.Fatalf("Bundle() error: %v", err)
	}
	small, err := bundler.Bundle(context.Background(), "main", bundler.WithBaseDir(root))
	if err != nil {
		t.Fatalf("Bundle() error: %v", err)
	}
	if !strings.Contains(plain.Code, "function (require, module, exports)") {
		t.Errorf("unminified bundle lost the factory wrapper:\n%s", plain.Code)
	}
	if len(small.Code) >= len(plain.Code) {
		t.Errorf("minified bundle is %d bytes, unminified %d", len(small.Code), len(plain.Code))
	}
	for _, code := range []string{plain.Code, small.Code} {
		if got := run(t, code); len(got) != 1 || got[0] != "hello world" {
			t.Errorf("console output %v, want [hello world]", got)
		}
	}
}

func TestBundle_CycleDiagnostics(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"index.ts": "import {b} from './b'\nexport const a = 'a'\nconsole.log(b())\n",
		"b.ts":     "import {a} from './index'\nexport function b() { return 'b sees ' + a }\n",
		"self.ts":  "",
	}

	tests := []struct {
		policy       emit.CachePolicy
		wantSeverity bundler.Severity
	}{
		{policy: emit.CacheExports, wantSeverity: bundler.SeverityWarning},
		{policy: emit.ReexecuteOnRequire, wantSeverity: bundler.SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			t.Parallel()

			root := testutil.WriteTree(t, t.TempDir(), files)
			res, err := bundler.Bundle(context.Background(), "index.ts",
				bundler.WithBaseDir(root), bundler.WithCachePolicy(tt.policy))
			if err != nil {
				t.Fatalf("Bundle() error: %v", err)
			}
			if len(res.Diagnostics) != 1 {
				t.Fatalf("got %d diagnostics, want 1: %+v", len(res.Diagnostics), res.Diagnostics)
			}
			d := res.Diagnostics[0]
			if d.Code != bundler.CodeImportCycle || d.Severity != tt.wantSeverity {
				t.Errorf("diagnostic = {%s %s}, want {%s %s}", d.Code, d.Severity, bundler.CodeImportCycle, tt.wantSeverity)
			}
			if len(d.Paths) != 2 || d.Paths[0] != res.Graph.Entry().Path {
				t.Errorf("Paths = %v, want the entry and b.ts", d.Paths)
			}
			if !strings.Contains(d.Message, "index.ts, b.ts") {
				t.Errorf("Message = %q, want relative module names", d.Message)
			}
			if tt.policy == emit.CacheExports {
				if got := run(t, res.Code); len(got) != 1 || got[0] != "b sees a" {
					t.Errorf("console output %v, want [b sees a]", got)
				}
			}
		})
	}
}

func TestBundle_SelfImportDiagnostic(t *testing.T) {
	t.Parallel()

	tree := modgraphtest.NewTree("/virtual", map[string]string{"loop.ts": "import './loop'\n"})
	res, err := bundler.Bundle(context.Background(), "/virtual/loop.ts",
		bundler.WithReader(tree),
		bundler.WithTransformer(modgraphtest.Passthrough{}),
		bundler.WithParser(modgraphtest.Scanner{}),
		bundler.WithMinify(false),
	)
	if err != nil {
		t.Fatalf("Bundle() error: %v", err)
	}
	if len(res.Diagnostics) != 1 || !strings.Contains(res.Diagnostics[0].Message, "loop.ts imports itself") {
		t.Errorf("diagnostics = %+v, want a self-import warning", res.Diagnostics)
	}
}

func TestBundle_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing import", func(t *testing.T) {
		t.Parallel()

		root := testutil.WriteTree(t, t.TempDir(), map[string]string{"index.ts": "import './gone'\n"})
		res, err := bundler.Bundle(context.Background(), "index.ts", bundler.WithBaseDir(root))
		if res != nil {
			t.Error("Bundle() returned a result alongside an error")
		}
		var resErr *modgraph.ResolutionError
		if !errors.As(err, &resErr) || resErr.Specifier != "./gone" {
			t.Errorf("error = %v, want ResolutionError for ./gone", err)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		root := testutil.WriteTree(t, t.TempDir(), map[string]string{"index.ts": "export const = 1\n"})
		_, err := bundler.Bundle(context.Background(), "index.ts", bundler.WithBaseDir(root))
		if !errors.Is(err, modgraph.ErrCompilation) {
			t.Errorf("error = %v, want ErrCompilation", err)
		}
	})

	t.Run("compaction", func(t *testing.T) {
		t.Parallel()

		root := testutil.WriteTree(t, t.TempDir(), map[string]string{"index.ts": "console.log(1)\n"})
		cause := errors.New("out of budget")
		_, err := bundler.Bundle(context.Background(), "index.ts",
			bundler.WithBaseDir(root),
			bundler.WithCompactor(emit.CompactFunc(func(context.Context, string) (string, error) { return "", cause })),
		)
		if !errors.Is(err, emit.ErrCompaction) || !errors.Is(err, cause) {
			t.Errorf("error = %v, want CompactionError wrapping the cause", err)
		}
	})
}

func TestBundle_LogsCompletion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	tree := modgraphtest.NewTree("/virtual", map[string]string{"index.ts": "import './a'\n", "a.ts": ""})

	_, err := bundler.New(
		bundler.WithReader(tree),
		bundler.WithTransformer(modgraphtest.Passthrough{}),
		bundler.WithParser(modgraphtest.Scanner{}),
		bundler.WithMinify(false),
		bundler.WithLogger(logger),
	).Bundle(context.Background(), "/virtual/index.ts")
	if err != nil {
		t.Fatalf("Bundle() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "bundle complete") || !strings.Contains(out, "modules=2") {
		t.Errorf("log output = %q, want bundle complete with modules=2", out)
	}
	if strings.Contains(out, "discovered module") {
		t.Errorf("debug output leaked at info level: %q", out)
	}
}

func TestEvaluationOrderAndCycles(t *testing.T) {
	t.Parallel()

	acyclic, _ := modgraphtest.CommonJSGraph(t, map[string]string{
		"index.ts": "require('./a'); require('./b');",
		"a.ts":     "require('./b');",
		"b.ts":     "",
	}, "index.ts")
	order, err := bundler.EvaluationOrder(acyclic)
	if err != nil {
		t.Fatalf("EvaluationOrder() error: %v", err)
	}
	if len(order) != 3 || order[0] != 2 || order[2] != 0 {
		t.Errorf("EvaluationOrder() = %v, want [2 1 0]", order)
	}
	if cycles := bundler.Cycles(acyclic); cycles != nil {
		t.Errorf("Cycles() = %v, want nil", cycles)
	}

	cyclic, _ := modgraphtest.CommonJSGraph(t, map[string]string{
		"index.ts": "require('./a');",
		"a.ts":     "require('./b');",
		"b.ts":     "require('./a');",
	}, "index.ts")
	if _, err := bundler.EvaluationOrder(cyclic); err == nil {
		t.Error("EvaluationOrder() should fail on circular imports")
	}
	cycles := bundler.Cycles(cyclic)
	if len(cycles) != 1 || len(cycles[0]) != 2 || cycles[0][0].ID != 1 || cycles[0][1].ID != 2 {
		t.Errorf("Cycles() = %v, want one group of modules 1 and 2", cycles)
	}
}
