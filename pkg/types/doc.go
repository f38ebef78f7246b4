// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared across minipack packages:
// filesystem paths and process exit codes. Each type validates itself and
// reports failures through a typed error wrapping a package sentinel.
package types
