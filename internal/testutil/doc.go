// SPDX-License-Identifier: MPL-2.0

// Package testutil holds fixtures shared by minipack tests: on-disk module
// trees (WriteTree, MustReadFile) and a semaphore bounding concurrent
// container tests (ContainerSemaphore).
package testutil
