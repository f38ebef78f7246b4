// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/invowk/minipack/internal/config"
	"github.com/invowk/minipack/pkg/bundler"
	"github.com/invowk/minipack/pkg/fspath"
	"github.com/invowk/minipack/pkg/jscompiler"
	"github.com/invowk/minipack/pkg/modgraph"
	"github.com/invowk/minipack/pkg/types"
)

// Graph output formats.
const (
	graphFormatText     = "text"
	graphFormatMarkdown = "markdown"
	graphFormatJSON     = "json"
)

type (
	graphFlags struct {
		ext         string
		format      string
		cycles      bool
		loaderCache string
	}

	// graphModule is the JSON form of one module.
	graphModule struct {
		ID           int                     `json:"id"`
		Path         string                  `json:"path"`
		Extension    string                  `json:"extension"`
		Dependencies *modgraph.DependencyMap `json:"dependencies"`
	}
)

// newGraphCommand creates the `minipack graph` command.
func newGraphCommand(app *App) *cobra.Command {
	flags := &graphFlags{}
	cmd := &cobra.Command{
		Use:   "graph [entry]",
		Short: "Show the module graph of an entry",
		Long: `Resolve the module graph of an entry without emitting a bundle.

Modules are listed in ID order with the specifiers they import. With
--cycles only circular imports are reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), app, flags, firstArg(args))
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.ext, "ext", "", "extension for extension-less imports (default .ts)")
	f.StringVar(&flags.format, "format", graphFormatText, "output format: text, markdown or json")
	f.BoolVar(&flags.cycles, "cycles", false, "only report circular imports")
	f.StringVar(&flags.loaderCache, "loader-cache", "", "judge cycles against this loader cache policy")

	return cmd
}

func runGraph(ctx context.Context, app *App, flags *graphFlags, entryArg string) error {
	switch flags.format {
	case graphFormatText, graphFormatMarkdown, graphFormatJSON:
	default:
		return &ExitError{Code: types.ExitUsage, Err: fmt.Errorf("unknown --format %q (valid: text, markdown, json)", flags.format)}
	}

	p, err := app.openProject(ctx)
	if err != nil {
		return err
	}
	s, err := p.resolveSettings(entryArg, overrides{ext: flags.ext, loaderCache: flags.loaderCache})
	if err != nil {
		return err
	}

	compiler := jscompiler.New()
	builder := modgraph.NewBuilder(modgraph.OSFileReader{}, compiler, compiler,
		modgraph.WithLogger(p.logger),
		modgraph.WithDefaultExtension(s.ext),
		modgraph.WithMaxConcurrency(s.maxConcurrency),
	)
	g, err := builder.Resolve(ctx, s.entry)
	if err != nil {
		return classifyBundleError(err, s.entry)
	}

	if flags.cycles {
		return renderCycles(app.stdout, bundler.CycleDiagnostics(g, s.policy))
	}

	base := fspath.Dir(g.Entry().Path)
	switch flags.format {
	case graphFormatMarkdown:
		return renderGraphMarkdown(app.stdout, g, base, p.Config.UI.ColorScheme)
	case graphFormatJSON:
		return renderGraphJSON(app.stdout, g, base)
	default:
		return renderGraphTable(app.stdout, g, base)
	}
}

func renderCycles(w io.Writer, diags []bundler.Diagnostic) error {
	if len(diags) == 0 {
		fmt.Fprintln(w, SuccessStyle.Render("No import cycles"))
		return nil
	}
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%d import cycle(s)", len(diags))))
	for _, d := range diags {
		style := WarningStyle
		if d.Severity == bundler.SeverityError {
			style = ErrorStyle
		}
		fmt.Fprintf(w, "  %s %s\n", style.Render(string(d.Severity)+":"), d.Message)
	}
	return nil
}

func dependencyList(mod *modgraph.Module) string {
	deps := make([]string, 0, mod.Dependencies.Len())
	for spec, id := range mod.Dependencies.All() {
		deps = append(deps, spec+" → "+strconv.Itoa(id))
	}
	return strings.Join(deps, ", ")
}

func renderGraphTable(w io.Writer, g *modgraph.Graph, base types.FilesystemPath) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "PATH", "EXT", "IMPORTS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})

	for _, mod := range g.Modules() {
		t.Row(strconv.Itoa(mod.ID), displayPath(base, mod.Path), mod.Extension, dependencyList(mod))
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func graphMarkdown(g *modgraph.Graph, base types.FilesystemPath) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Module graph\n\n%d modules from `%s`.\n\n", g.Len(), displayPath(base, g.Entry().Path))
	sb.WriteString("| ID | Path | Ext | Imports |\n|---:|---|---|---|\n")
	for _, mod := range g.Modules() {
		deps := make([]string, 0, mod.Dependencies.Len())
		for spec, id := range mod.Dependencies.All() {
			deps = append(deps, fmt.Sprintf("`%s` → %d", spec, id))
		}
		fmt.Fprintf(&sb, "| %d | `%s` | %s | %s |\n", mod.ID, displayPath(base, mod.Path), mod.Extension, strings.Join(deps, ", "))
	}
	return sb.String()
}

func renderGraphMarkdown(w io.Writer, g *modgraph.Graph, base types.FilesystemPath, scheme config.ColorScheme) error {
	style := "auto"
	if scheme == config.ColorSchemeDark || scheme == config.ColorSchemeLight {
		style = scheme.String()
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := renderer.Render(graphMarkdown(g, base))
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func renderGraphJSON(w io.Writer, g *modgraph.Graph, base types.FilesystemPath) error {
	mods := make([]graphModule, 0, g.Len())
	for _, mod := range g.Modules() {
		mods = append(mods, graphModule{
			ID:           mod.ID,
			Path:         displayPath(base, mod.Path),
			Extension:    mod.Extension,
			Dependencies: mod.Dependencies,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(mods)
}
