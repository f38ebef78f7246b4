// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseResult is a document decoded against a schema.
type ParseResult[T any] struct {
	Value *T
	// Unified keeps the schema-unified value so callers can tell explicitly
	// set fields from defaults.
	Unified cue.Value
}

// ParseAndDecode unifies data with the definition at schemaPath in schema,
// validates the result and decodes it into a T. Problems in data are
// reported through FormatError; problems in schema are internal errors.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	name := o.filename
	if name == "" {
		name = "<input>"
	}
	if err := CheckFileSize(data, o.maxFileSize, name); err != nil {
		return nil, err
	}

	cctx := cuecontext.New()
	def, err := definition(cctx, schema, schemaPath)
	if err != nil {
		return nil, err
	}

	doc := cctx.CompileBytes(data, cue.Filename(name))
	if err := doc.Err(); err != nil {
		return nil, FormatError(err, name)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, name)
	}
	out := new(T)
	if err := unified.Decode(out); err != nil {
		return nil, FormatError(err, name)
	}
	return &ParseResult[T]{Value: out, Unified: unified}, nil
}

func definition(cctx *cue.Context, schema []byte, path string) (cue.Value, error) {
	root := cctx.CompileBytes(schema)
	if err := root.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: compile schema: %w", err)
	}
	def := root.LookupPath(cue.ParsePath(path))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s: %w", path, err)
	}
	return def, nil
}
