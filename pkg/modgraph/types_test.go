// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"slices"
	"testing"
)

func TestDependencyMap_PreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	deps := NewDependencyMap()
	deps.Set("./z", 3)
	deps.Set("./a", 1)
	deps.Set("../m", 2)

	if got, want := deps.Specifiers(), []string{"./z", "./a", "../m"}; !slices.Equal(got, want) {
		t.Errorf("Specifiers() = %v, want %v", got, want)
	}
	if deps.Len() != 3 {
		t.Errorf("Len() = %d, want 3", deps.Len())
	}
}

func TestDependencyMap_RepeatedSpecifierKeepsPosition(t *testing.T) {
	t.Parallel()

	deps := NewDependencyMap()
	deps.Set("./a", 1)
	deps.Set("./b", 2)
	deps.Set("./a", 5)

	if got, want := deps.Specifiers(), []string{"./a", "./b"}; !slices.Equal(got, want) {
		t.Errorf("Specifiers() = %v, want %v", got, want)
	}
	if id, ok := deps.Get("./a"); !ok || id != 5 {
		t.Errorf("Get(./a) = %d, %v; want 5, true", id, ok)
	}
}

func TestDependencyMap_ZeroValue(t *testing.T) {
	t.Parallel()

	var deps DependencyMap
	if _, ok := deps.Get("./a"); ok {
		t.Error("Get on zero value reported a hit")
	}
	deps.Set("./a", 0)
	if id, ok := deps.Get("./a"); !ok || id != 0 {
		t.Errorf("Get(./a) = %d, %v; want 0, true", id, ok)
	}

	var nilDeps *DependencyMap
	if nilDeps.Len() != 0 || nilDeps.Specifiers() != nil {
		t.Error("nil DependencyMap should behave as empty")
	}
}

func TestDependencyMap_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  [][2]any
		want string
	}{
		{name: "empty", want: `{}`},
		{name: "ordered", set: [][2]any{{"./b", 2}, {"./a", 1}}, want: `{"./b":2,"./a":1}`},
		{name: "escaped", set: [][2]any{{`./q"uote`, 1}, {"./sep\u2028", 2}}, want: `{"./q\"uote":1,"./sep\u2028":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			deps := NewDependencyMap()
			for _, kv := range tt.set {
				deps.Set(kv[0].(string), kv[1].(int))
			}
			got, err := deps.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGraph_ReserveIsMemoized(t *testing.T) {
	t.Parallel()

	g := newGraph()
	a, fresh := g.reserve("/src/a.ts")
	if a != 0 || !fresh {
		t.Fatalf("first reserve = %d, %v; want 0, true", a, fresh)
	}
	b, fresh := g.reserve("/src/b.ts")
	if b != 1 || !fresh {
		t.Fatalf("second reserve = %d, %v; want 1, true", b, fresh)
	}
	again, fresh := g.reserve("/src/a.ts")
	if again != 0 || fresh {
		t.Errorf("repeat reserve = %d, %v; want 0, false", again, fresh)
	}

	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	if g.Entry().Path != "/src/a.ts" {
		t.Errorf("Entry().Path = %q, want /src/a.ts", g.Entry().Path)
	}
	if mod, ok := g.Lookup("/src/b.ts"); !ok || mod.ID != 1 || mod.Extension != ".ts" {
		t.Errorf("Lookup(/src/b.ts) = %+v, %v", mod, ok)
	}
	if _, ok := g.Module(2); ok {
		t.Error("Module(2) should not exist")
	}
	if _, ok := g.Module(-1); ok {
		t.Error("Module(-1) should not exist")
	}
}

func TestGraph_EmptyEntry(t *testing.T) {
	t.Parallel()

	if newGraph().Entry() != nil {
		t.Error("Entry() of empty graph should be nil")
	}
}
