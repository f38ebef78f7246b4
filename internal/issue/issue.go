// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	EntryNotFoundId Id = iota + 1
	ModuleNotFoundId
	PackageImportId
	CompilationFailedId
	CompactionFailedId
	ImportCycleId
	ConfigLoadFailedId
	InvalidLoaderCacheId
	BundleExecutionFailedId
	NodeNotFoundId
	PostBuildHookFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown using the given glamour
// style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	entryNotFoundIssue = &Issue{
		id: EntryNotFoundId,
		mdMsg: `
# Entry module not found!

minipack could not read the entry file you asked it to bundle.

## Things you can try:
- Check the path; relative entries are resolved against the current directory
- Leave out the extension only when the file ends in the default extension (` + "`.ts`" + `)
- Set ` + "`entry`" + ` in minipack.cue so you can run ` + "`minipack build`" + ` without arguments:
~~~cue
entry: "src/index.ts"
~~~`,
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Imported module not found!

A module imports a file that does not exist.

## How imports are resolved:
1. The specifier is joined with the directory of the importing module
2. If the result has no extension, the default extension is appended
3. No other extensions and no index files are tried

## Things you can try:
- Fix the specifier in the importing module
- Add the extension explicitly (` + "`./util.js`" + `) when it differs from the default
- Change the default with ` + "`--ext`" + ` or ` + "`resolve.default_extension`",
	}

	packageImportIssue = &Issue{
		id: PackageImportId,
		mdMsg: `
# Package imports are not supported!

minipack bundles local files only. Specifiers that do not start with
` + "`./`" + `, ` + "`../`" + ` or ` + "`/`" + ` name packages and cannot be resolved.

## Things you can try:
- Vendor the package source next to your code and import it by relative path
- Use a full-featured bundler for projects with package dependencies`,
		extLinks: []HttpLink{"https://nodejs.org/api/modules.html#all-together"},
	}

	compilationFailedIssue = &Issue{
		id: CompilationFailedId,
		mdMsg: `
# Module failed to compile!

esbuild rejected one of your modules. The location of the first problem is
shown above as ` + "`file:line:column`" + `.

## Things you can try:
- Fix the syntax error at the reported location
- Make sure the file extension matches its content (` + "`.ts`" + ` for TypeScript, ` + "`.tsx`" + ` for JSX)`,
		extLinks: []HttpLink{"https://esbuild.github.io/content-types/"},
	}

	compactionFailedIssue = &Issue{
		id: CompactionFailedId,
		mdMsg: `
# Bundle minification failed!

The bundle was assembled but could not be minified.

## Things you can try:
- Build without minification to inspect the generated code:
~~~
$ minipack build --no-minify
~~~`,
	}

	importCycleIssue = &Issue{
		id: ImportCycleId,
		mdMsg: `
# Circular imports detected!

Some modules import each other. With the default loader cache a module that
is still initializing is handed out half-finished, exactly like Node.js.
With ` + "`loader.cache: \"reexecute\"`" + ` every require runs the module again
and the bundle never terminates.

## Things you can try:
- List the cycles:
~~~
$ minipack graph --cycles
~~~
- Move the shared code into a module both sides import
- Keep the default loader cache (` + "`exports`" + `)`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

minipack.cue exists but could not be parsed or does not match the schema.

## Things you can try:
- Check the reported field path and line
- Print the effective configuration:
~~~
$ minipack config show
~~~
- Regenerate a default file:
~~~
$ minipack config init --force
~~~`,
	}

	invalidLoaderCacheIssue = &Issue{
		id: InvalidLoaderCacheId,
		mdMsg: `
# Invalid loader cache policy!

The loader cache must be one of:
- ` + "`exports`" + `: evaluate each module once and share its exports (default)
- ` + "`reexecute`" + `: evaluate the module body on every require`,
	}

	bundleExecutionFailedIssue = &Issue{
		id: BundleExecutionFailedId,
		mdMsg: `
# The bundle threw an error!

The bundle was built but failed while running.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the JavaScript stack trace
- Run it with Node.js to compare:
~~~
$ minipack run --node
~~~`,
	}

	nodeNotFoundIssue = &Issue{
		id: NodeNotFoundId,
		mdMsg: `
# Node.js not found!

` + "`--node`" + ` runs bundles with the host's ` + "`node`" + ` binary, which is not on your PATH.

## Things you can try:
- Install Node.js
- Drop ` + "`--node`" + ` to use the embedded JavaScript runtime`,
		extLinks: []HttpLink{"https://nodejs.org/en/download"},
	}

	postBuildHookFailedIssue = &Issue{
		id: PostBuildHookFailedId,
		mdMsg: `
# Post-build hook failed!

The bundle was written, but the ` + "`hooks.post_build`" + ` script exited with an error.

## Things you can try:
- Check the script output above
- Skip hooks for one build:
~~~
$ minipack build --no-hooks
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

minipack could not read a source file or write an output file.

## Things you can try:
- Check the file permissions
- Choose a different output path with ` + "`-o`",
	}

	issues = map[Id]*Issue{
		entryNotFoundIssue.Id():         entryNotFoundIssue,
		moduleNotFoundIssue.Id():        moduleNotFoundIssue,
		packageImportIssue.Id():         packageImportIssue,
		compilationFailedIssue.Id():     compilationFailedIssue,
		compactionFailedIssue.Id():      compactionFailedIssue,
		importCycleIssue.Id():           importCycleIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		invalidLoaderCacheIssue.Id():    invalidLoaderCacheIssue,
		bundleExecutionFailedIssue.Id(): bundleExecutionFailedIssue,
		nodeNotFoundIssue.Id():          nodeNotFoundIssue,
		postBuildHookFailedIssue.Id():   postBuildHookFailedIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

// Values returns every issue in Id order.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
