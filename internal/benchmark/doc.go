// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds end-to-end benchmarks over a generated module
// tree, used to collect PGO profiles for the minipack binary:
//   - configuration loading (CUE + viper)
//   - graph resolution with in-memory collaborators
//   - bundle rendering
//   - esbuild-backed bundling, with and without minification
//   - executing a bundle in the embedded runtime
//
// To write a profile:
//
//	go test ./internal/benchmark -run '^$' -bench . -cpuprofile default.pgo
package benchmark
