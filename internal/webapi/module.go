package webapi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// EntryGlobal is the global that holds the bundle's render entry object
// once a bundle has been loaded.
const EntryGlobal = "__ssr_entry__"

// reModuleSyntax matches a top-level export statement at the start of a line.
var reModuleSyntax = regexp.MustCompile(`(?m)^export\s*(\{|default\b|async\s|function\b|const\b|let\b|var\b|class\b|\*)`)

// IsModule reports whether source is an ES module rather than a classic
// script. Only modules are rewritten by WrapModule.
func IsModule(source string) bool {
	return reModuleSyntax.MatchString(source)
}

// WrapModule uses esbuild to turn an ES module into a classic script that
// assigns its namespace to globalThis.__ssr_entry__. A default export
// replaces the namespace, so both `export default { render }` and
// `export function render` end up with a callable entry.
func WrapModule(source string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Format:     api.FormatIIFE,
		GlobalName: "globalThis." + EntryGlobal,
		Target:     api.ESNext,
		Sourcefile: "server-bundle.js",
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			if e.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%s:%d:%d: %s", e.Location.File, e.Location.Line, e.Location.Column, e.Text))
			} else {
				msgs = append(msgs, e.Text)
			}
		}
		return "", fmt.Errorf("transforming bundle: %s", strings.Join(msgs, "; "))
	}
	code := string(result.Code)
	code += "if(globalThis." + EntryGlobal + "&&globalThis." + EntryGlobal + ".default)globalThis." + EntryGlobal + "=globalThis." + EntryGlobal + ".default;\n"
	return code, nil
}
