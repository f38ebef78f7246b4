// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Every CUE document minipack reads goes through the same three steps:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with a schema definition
//  3. Validate and decode to Go values
//
// # Usage
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[map[string]any](
//	    schema,
//	    data,
//	    "#Config",
//	    cueutil.WithFilename("minipack.cue"),
//	)
//	if err != nil {
//	    return nil, err // Error includes the CUE path of the offending field
//	}
package cueutil
