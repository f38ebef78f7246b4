// SPDX-License-Identifier: MPL-2.0

// Package modgraph discovers the module graph of a program rooted at an entry
// file.
//
// Starting from the entry, every local import is canonicalized to an absolute
// path, read once, transformed to CommonJS and scanned for further imports.
// Each distinct file becomes one Module with a numeric ID: IDs are issued in
// discovery order starting at 0 for the entry, and they are contiguous.
//
// A module's slot is reserved (ID issued, placeholder stored under its path)
// before any of its own imports are examined, so circular imports resolve to
// the already-reserved ID instead of recursing. Discovery proceeds one
// frontier at a time: all modules of a frontier are read, transformed and
// parsed concurrently, then their imports are reserved sequentially in ID
// order and declaration order. This keeps ID assignment a deterministic
// function of the source tree regardless of I/O timing.
//
// File access and source processing are delegated to the FileReader,
// Transformer and ImportParser collaborators.
package modgraph
