// SPDX-License-Identifier: MPL-2.0

// Package manifest records what went into a bundle as a TOML file written
// next to it: the entry, every module with its resolved dependencies, a
// digest of the output and the diagnostics reported during the build.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/invowk/minipack/pkg/bundler"
	"github.com/invowk/minipack/pkg/fspath"
	"github.com/invowk/minipack/pkg/types"
)

// FormatVersion is the manifest layout version written by this package.
const FormatVersion = 1

// ErrUnsupportedVersion is returned by Read for manifests from another layout.
var ErrUnsupportedVersion = errors.New("unsupported manifest version")

type (
	// Manifest describes one produced bundle.
	Manifest struct {
		Version     int          `toml:"version"`
		Entry       string       `toml:"entry"`
		Bundle      Bundle       `toml:"bundle"`
		Modules     []Module     `toml:"modules"`
		Diagnostics []Diagnostic `toml:"diagnostics,omitempty"`
	}

	// Bundle describes the output file.
	Bundle struct {
		Path        string `toml:"path"`
		Bytes       int    `toml:"bytes"`
		SHA256      string `toml:"sha256"`
		Minified    bool   `toml:"minified"`
		LoaderCache string `toml:"loader_cache"`
	}

	// Module is one module of the graph, in ID order.
	Module struct {
		ID           int          `toml:"id"`
		Path         string       `toml:"path"`
		Extension    string       `toml:"extension,omitempty"`
		Bytes        int          `toml:"bytes"`
		Dependencies []Dependency `toml:"dependencies,omitempty"`
	}

	// Dependency is one import specifier and the module it resolved to.
	Dependency struct {
		Specifier string `toml:"specifier"`
		ID        int    `toml:"id"`
	}

	// Diagnostic mirrors bundler.Diagnostic without the Go error cause.
	Diagnostic struct {
		Severity string   `toml:"severity"`
		Code     string   `toml:"code"`
		Message  string   `toml:"message"`
		Paths    []string `toml:"paths"`
	}

	// Options carries build settings that are not part of bundler.Result.
	Options struct {
		// BaseDir makes recorded paths relative; absolute paths are kept
		// when empty or when a path lies outside it.
		BaseDir types.FilesystemPath
		// BundlePath is where the bundle was written ("-" for stdout).
		BundlePath types.FilesystemPath
		// Minified reports whether the bundle was compacted.
		Minified bool
		// LoaderCache is the loader's cache policy.
		LoaderCache string
	}
)

// New builds the manifest for res.
func New(res *bundler.Result, opts Options) *Manifest {
	sum := sha256.Sum256([]byte(res.Code))
	m := &Manifest{
		Version: FormatVersion,
		Bundle: Bundle{
			Path:        opts.relative(opts.BundlePath),
			Bytes:       len(res.Code),
			SHA256:      hex.EncodeToString(sum[:]),
			Minified:    opts.Minified,
			LoaderCache: opts.LoaderCache,
		},
	}

	if entry := res.Graph.Entry(); entry != nil {
		m.Entry = opts.relative(entry.Path)
	}

	for _, mod := range res.Graph.Modules() {
		entry := Module{
			ID:        mod.ID,
			Path:      opts.relative(mod.Path),
			Extension: mod.Extension,
			Bytes:     len(mod.Code),
		}
		for spec, id := range mod.Dependencies.All() {
			entry.Dependencies = append(entry.Dependencies, Dependency{Specifier: spec, ID: id})
		}
		m.Modules = append(m.Modules, entry)
	}

	for _, d := range res.Diagnostics {
		diag := Diagnostic{
			Severity: string(d.Severity),
			Code:     d.Code,
			Message:  d.Message,
			Paths:    make([]string, len(d.Paths)),
		}
		for i, p := range d.Paths {
			diag.Paths[i] = opts.relative(p)
		}
		m.Diagnostics = append(m.Diagnostics, diag)
	}
	return m
}

func (o Options) relative(p types.FilesystemPath) string {
	if o.BaseDir == "" || p == "" || !fspath.IsAbs(p) {
		return filepath.ToSlash(p.String())
	}
	rel := fspath.Rel(o.BaseDir, p)
	if fspath.IsAbs(rel) || strings.HasPrefix(rel.String(), "..") {
		return filepath.ToSlash(p.String())
	}
	return filepath.ToSlash(rel.String())
}

// Encode writes m as TOML.
func (m *Manifest) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return nil
}

// Write encodes m to path, creating parent directories.
func Write(path types.FilesystemPath, m *Manifest) error {
	var buf bytes.Buffer
	buf.WriteString("# Generated by minipack. Do not edit.\n\n")
	if err := m.Encode(&buf); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path.String()), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := os.WriteFile(path.String(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Read parses a manifest file. Unknown keys are rejected.
func Read(path types.FilesystemPath) (*Manifest, error) {
	data, err := os.ReadFile(path.String())
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parsing manifest %s: %w\n%s", path, err, strict.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("parsing manifest %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if m.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrUnsupportedVersion, m.Version, FormatVersion)
	}
	return &m, nil
}

// Verify reports whether code matches the digest recorded in m.
func (m *Manifest) Verify(code []byte) bool {
	sum := sha256.Sum256(code)
	return m.Bundle.SHA256 == hex.EncodeToString(sum[:]) && m.Bundle.Bytes == len(code)
}
