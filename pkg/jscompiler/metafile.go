// SPDX-License-Identifier: MPL-2.0

package jscompiler

const (
	// importStatement is the metafile kind for `import ... from` and
	// `export ... from` declarations.
	importStatement = "import-statement"
	// stdinInput is the metafile key of a stdin entry point.
	stdinInput = "<stdin>"
)

type (
	// metafile is the subset of esbuild's metafile JSON read by ParseImports.
	metafile struct {
		Inputs map[string]metafileInput `json:"inputs"`
	}

	metafileInput struct {
		Bytes   int              `json:"bytes"`
		Imports []metafileImport `json:"imports"`
		Format  string           `json:"format,omitempty"`
	}

	metafileImport struct {
		Path     string `json:"path"`
		Kind     string `json:"kind"`
		External bool   `json:"external,omitempty"`
		// Original is the specifier as written when Path was rewritten.
		Original string `json:"original,omitempty"`
	}
)

// entry returns the metafile record for the parsed source.
func (m *metafile) entry(sourcefile string) (metafileInput, bool) {
	if in, ok := m.Inputs[stdinInput]; ok {
		return in, true
	}
	if in, ok := m.Inputs[sourcefile]; ok {
		return in, true
	}
	if len(m.Inputs) == 1 {
		for _, in := range m.Inputs {
			return in, true
		}
	}
	return metafileInput{}, false
}

// specifiers returns the static import specifiers of in, in source order,
// with repeats collapsed.
func (in metafileInput) specifiers() []string {
	specs := make([]string, 0, len(in.Imports))
	seen := make(map[string]bool, len(in.Imports))
	for _, imp := range in.Imports {
		if imp.Kind != importStatement {
			continue
		}
		spec := imp.Original
		if spec == "" {
			spec = imp.Path
		}
		if seen[spec] {
			continue
		}
		seen[spec] = true
		specs = append(specs, spec)
	}
	return specs
}
