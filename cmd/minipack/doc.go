// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for minipack.
//
// Every command is built from an App, the composition root holding the
// configuration provider, the runtime registry and the output streams, so
// tests can run the full command tree against fakes or temporary projects.
package cmd
