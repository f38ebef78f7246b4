// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The Issue catalog holds long-form Markdown guidance for
// each failure class, rendered for the terminal with glamour.
package issue
