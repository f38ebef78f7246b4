// SPDX-License-Identifier: MPL-2.0

// Package platform detects application sandboxes that hide host binaries.
package platform
