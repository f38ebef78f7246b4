// SPDX-License-Identifier: MPL-2.0

package jscompiler

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// tsconfigRaw keeps every value import in the output, used or not, so the
// transformed code and the parsed import list always agree.
const tsconfigRaw = `{"compilerOptions":{"verbatimModuleSyntax":true}}`

// Compiler implements modgraph.Transformer, modgraph.ImportParser and
// emit.Compactor with esbuild.
type Compiler struct {
	target api.Target
}

// New creates a Compiler lowering modules to ES2017.
func New() *Compiler {
	return &Compiler{target: api.ES2017}
}

// LoaderFor picks the esbuild loader for a module from its file extension.
func LoaderFor(filename string) api.Loader {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	case ".json":
		return api.LoaderJSON
	default:
		return api.LoaderJS
	}
}

// Transform converts one module to CommonJS.
func (c *Compiler) Transform(ctx context.Context, source []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	result := api.Transform(string(source), api.TransformOptions{
		Loader:      LoaderFor(filename),
		Format:      api.FormatCommonJS,
		Target:      c.target,
		Sourcefile:  filename,
		TsconfigRaw: tsconfigRaw,
		LogLevel:    api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", newDiagnosticsError(result.Errors)
	}
	return string(result.Code), nil
}

// ParseImports lists the static import and re-export specifiers of one module
// in source order. Nothing is resolved: every import is treated as external.
func (c *Compiler) ParseImports(ctx context.Context, source []byte, filename string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   string(source),
			Sourcefile: filename,
			ResolveDir: filepath.Dir(filename),
			Loader:     LoaderFor(filename),
		},
		Bundle:      true,
		Write:       false,
		Metafile:    true,
		TsconfigRaw: tsconfigRaw,
		LogLevel:    api.LogLevelSilent,
		Plugins:     []api.Plugin{externalizeAll},
	})
	if len(result.Errors) > 0 {
		return nil, newDiagnosticsError(result.Errors)
	}

	var meta metafile
	if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
		return nil, fmt.Errorf("decode esbuild metafile: %w", err)
	}
	in, ok := meta.entry(filename)
	if !ok {
		return nil, fmt.Errorf("esbuild metafile has no record for %s", filename)
	}
	return in.specifiers(), nil
}

// Compact minifies a complete bundle.
func (c *Compiler) Compact(ctx context.Context, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	result := api.Transform(code, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", newDiagnosticsError(result.Errors)
	}
	return string(result.Code), nil
}

// externalizeAll stops esbuild from resolving anything, so parsing one
// module never touches another file.
var externalizeAll = api.Plugin{
	Name: "minipack-externalize",
	Setup: func(build api.PluginBuild) {
		build.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
			return api.OnResolveResult{Path: args.Path, External: true}, nil
		})
	},
}
