// SPDX-License-Identifier: MPL-2.0

// Package jscompiler implements the modgraph and emit source-processing
// collaborators on top of esbuild.
//
// A Compiler transforms TypeScript and JavaScript modules to CommonJS, lists
// their static imports, and minifies finished bundles. Every call is
// independent and safe for concurrent use.
package jscompiler
