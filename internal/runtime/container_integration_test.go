// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/invowk/minipack/internal/testutil"
	"github.com/invowk/minipack/pkg/emit"
	"github.com/invowk/minipack/pkg/modgraph/modgraphtest"
)

const nodeImage = "node:22-alpine"

// checkTestcontainersAvailable safely checks if testcontainers can be used.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestBundle_RunsUnderNode checks that emitted bundles behave the same under
// Node as under the virtual runtime.
func TestBundle_RunsUnderNode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping container integration tests: testcontainers provider not available")
	}

	sem := testutil.ContainerSemaphore()
	sem <- struct{}{}
	defer func() { <-sem }()

	files := map[string]string{
		"index.js": `const m = require("./math.js"); console.log(m.add(2, 3), require("./math.js") === m);`,
		"math.js":  `exports.add = (a, b) => a + b;`,
	}
	g, _ := modgraphtest.CommonJSGraph(t, files, "index.js")
	code, err := emit.NewEmitter(nil).Emit(t.Context(), g)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	virtual := NewVirtualRuntime().ExecuteCapture(NewExecutionContext(t.Context(), code))
	if !virtual.Success() {
		t.Fatalf("virtual run failed: %+v", virtual)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      nodeImage,
			Cmd:        []string{"node", "/bundle.js"},
			WaitingFor: wait.ForExit().WithExitTimeout(time.Minute),
			Files: []testcontainers.ContainerFile{{
				Reader:            strings.NewReader(code),
				ContainerFilePath: "/bundle.js",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start %s: %v", nodeImage, err)
	}

	state, err := ctr.State(ctx)
	if err != nil {
		t.Fatalf("container state: %v", err)
	}
	if state.ExitCode != 0 {
		t.Errorf("node exit code = %d, want 0", state.ExitCode)
	}

	logs, err := ctr.Logs(ctx)
	if err != nil {
		t.Fatalf("container logs: %v", err)
	}
	defer logs.Close()
	out, err := io.ReadAll(logs)
	if err != nil {
		t.Fatalf("read logs: %v", err)
	}

	if got := strings.TrimSpace(string(out)); got != strings.TrimSpace(virtual.Output) {
		t.Errorf("node output %q != virtual output %q", got, virtual.Output)
	}
}
