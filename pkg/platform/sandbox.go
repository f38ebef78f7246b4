// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

const (
	// SandboxNone means host binaries are reachable directly.
	SandboxNone Sandbox = ""
	// SandboxFlatpak marks a Flatpak sandbox; host binaries are reached
	// through flatpak-spawn --host.
	SandboxFlatpak Sandbox = "flatpak"
	// SandboxSnap marks a Snap. Classic snaps see the host PATH, so no
	// wrapper is applied.
	SandboxSnap Sandbox = "snap"

	flatpakInfo  = "/.flatpak-info"
	flatpakSpawn = "flatpak-spawn"
)

// Sandbox identifies the application sandbox of the current process.
type Sandbox string

// detect caches the sandbox for the process lifetime. detectFrom must not
// panic: OnceValue repeats a panic on every call.
var detect = sync.OnceValue(func() Sandbox {
	return detectFrom(os.Getenv, func(path string) error {
		_, err := os.Stat(path)
		return err
	})
})

// Detect returns the sandbox the process runs in.
func Detect() Sandbox { return detect() }

// Wrapped reports whether host commands need a spawn wrapper.
func (s Sandbox) Wrapped() bool { return s == SandboxFlatpak }

// HostCommand rewrites name and args to run on the host. env entries
// ("KEY=value") and dir are forwarded explicitly because the wrapper does
// not inherit them. Unwrapped sandboxes return the input unchanged.
func (s Sandbox) HostCommand(name string, args []string, env []string, dir string) (string, []string) {
	if !s.Wrapped() {
		return name, args
	}
	wrapped := make([]string, 0, len(args)+len(env)+3)
	wrapped = append(wrapped, "--host")
	if dir != "" {
		wrapped = append(wrapped, "--directory="+dir)
	}
	for _, kv := range env {
		wrapped = append(wrapped, "--env="+kv)
	}
	wrapped = append(wrapped, name)
	wrapped = append(wrapped, args...)
	return flatpakSpawn, wrapped
}

// Flatpak wins over Snap when both indicators are present.
func detectFrom(getenv func(string) string, stat func(string) error) Sandbox {
	if stat(flatpakInfo) == nil {
		return SandboxFlatpak
	}
	if getenv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}
