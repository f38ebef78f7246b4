// SPDX-License-Identifier: MPL-2.0

// Package config handles minipack project configuration using Viper with CUE
// as the file format.
//
// A project is configured by minipack.cue in the working directory, or by
// the file given with --config. The file is validated against the embedded
// #Config schema (config_schema.cue) before being merged over the defaults;
// MINIPACK_* environment variables take precedence over both.
package config
