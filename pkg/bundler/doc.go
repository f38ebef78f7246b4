// SPDX-License-Identifier: MPL-2.0

// Package bundler turns an entry module into a single self-contained
// CommonJS script.
//
// Bundle resolves the module graph with modgraph, checks it for import
// cycles, and emits the compacted bundle with emit. The defaults read from
// the local filesystem and use esbuild for transforming, import parsing and
// minification; every collaborator can be replaced through an Option.
package bundler
