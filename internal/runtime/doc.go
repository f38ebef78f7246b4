// SPDX-License-Identifier: MPL-2.0

// Package runtime executes emitted bundles.
//
// Two runtimes are provided: VirtualRuntime evaluates the bundle in an
// embedded goja VM with a minimal console and process object, and
// NativeRuntime pipes it to the host's node binary. Both implement Runtime
// and are selected through a Registry.
package runtime
