// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"context"
	"os"
)

type (
	// FileReader loads raw module source.
	FileReader interface {
		ReadFile(ctx context.Context, path string) ([]byte, error)
	}

	// Transformer turns one module's source into CommonJS code that expects
	// require, module and exports to be in scope.
	Transformer interface {
		Transform(ctx context.Context, source []byte, filename string) (string, error)
	}

	// ImportParser lists the static import specifiers of one module in
	// declaration order. A module without imports yields an empty slice.
	ImportParser interface {
		ParseImports(ctx context.Context, source []byte, filename string) ([]string, error)
	}

	// OSFileReader reads modules from the local filesystem.
	OSFileReader struct{}
)

// ReadFile implements FileReader.
func (OSFileReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

type (
	// ReadFunc adapts a function to FileReader.
	ReadFunc func(ctx context.Context, path string) ([]byte, error)
	// TransformFunc adapts a function to Transformer.
	TransformFunc func(ctx context.Context, source []byte, filename string) (string, error)
	// ParseFunc adapts a function to ImportParser.
	ParseFunc func(ctx context.Context, source []byte, filename string) ([]string, error)
)

// ReadFile implements FileReader.
func (f ReadFunc) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// Transform implements Transformer.
func (f TransformFunc) Transform(ctx context.Context, source []byte, filename string) (string, error) {
	return f(ctx, source, filename)
}

// ParseImports implements ImportParser.
func (f ParseFunc) ParseImports(ctx context.Context, source []byte, filename string) ([]string, error) {
	return f(ctx, source, filename)
}
