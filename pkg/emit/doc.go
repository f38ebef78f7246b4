// SPDX-License-Identifier: MPL-2.0

// Package emit serializes a resolved module graph into one self-contained
// CommonJS script.
//
// The script is a small loader function applied to a table keyed by module
// ID. Each table entry pairs a factory wrapping the module's transformed code
// with the module's specifier → ID map. The loader starts by requiring ID 0,
// the entry. The assembled text is finally handed to a Compactor.
package emit
