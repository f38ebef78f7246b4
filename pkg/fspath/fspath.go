// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, plus the small amount of path
// arithmetic minipack needs to canonicalize module references.
package fspath

import (
	"fmt"
	"path/filepath"

	"github.com/invowk/minipack/pkg/types"
)

// Join wraps filepath.Join, accepting and returning types.FilesystemPath.
func Join(elem ...types.FilesystemPath) types.FilesystemPath {
	strs := make([]string, len(elem))
	for i, e := range elem {
		strs[i] = string(e)
	}
	return types.FilesystemPath(filepath.Join(strs...))
}

// JoinStr joins raw string segments (such as import specifiers) onto a typed
// base path.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Clean wraps filepath.Clean for FilesystemPath.
func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(string(p)))
}

// IsAbs wraps filepath.IsAbs for FilesystemPath.
func IsAbs(p types.FilesystemPath) bool {
	return filepath.IsAbs(string(p))
}

// Abs wraps filepath.Abs for FilesystemPath. Returns an error if the
// underlying OS call fails.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// AbsFrom resolves p against base when p is relative. Absolute paths are only
// cleaned. An empty base falls back to the process working directory.
func AbsFrom(base, p types.FilesystemPath) (types.FilesystemPath, error) {
	if IsAbs(p) {
		return Clean(p), nil
	}
	if base == "" {
		return Abs(p)
	}
	return Abs(Join(base, p))
}

// WithDefaultExt appends ext when p has no extension at all. Paths that
// already carry any extension are returned unchanged.
func WithDefaultExt(p types.FilesystemPath, ext string) types.FilesystemPath {
	if p.Ext() != "" || ext == "" {
		return p
	}
	return p + types.FilesystemPath(ext)
}

// Rel wraps filepath.Rel, returning target unchanged when no relative path
// exists (e.g. different volumes on Windows).
func Rel(base, target types.FilesystemPath) types.FilesystemPath {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return target
	}
	return types.FilesystemPath(filepath.ToSlash(rel))
}
