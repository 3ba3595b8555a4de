// Package markdown post-processes developer comment markdown before it is
// served: bare type-name link destinations become csdoc:// URIs, and rendered
// documents can carry a front-matter block of related URIs.
package markdown

import (
	"fmt"
	"sort"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// LinkTypes rewrites markdown link destinations through resolve. Comments in
// the payload link related types by bare name ("[ThingDef](ThingDef)");
// resolve maps such a destination to its csdoc:// URI, returning false for
// destinations to leave alone. Parsing goes through the AST so that code
// spans and ordinary URLs are untouched; the replacement itself is textual to
// preserve the original formatting.
func LinkTypes(src string, resolve func(dest string) (string, bool)) string {
	if src == "" || resolve == nil {
		return src
	}

	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))

	rewritten := make(map[string]string)
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if link, ok := node.(*ast.Link); ok {
			dest := string(link.Destination)
			if _, done := rewritten[dest]; done {
				return ast.GoToNext
			}
			if uri, ok := resolve(dest); ok {
				rewritten[dest] = uri
			}
		}
		return ast.GoToNext
	})

	if len(rewritten) == 0 {
		return src
	}

	result := src
	for dest, uri := range rewritten {
		result = strings.ReplaceAll(result, "]("+dest+")", "]("+uri+")")
	}
	return result
}

// WithRelated prepends a YAML front-matter block listing related csdoc URIs.
func WithRelated(src string, related map[string]string) string {
	if len(related) == 0 {
		return src
	}

	keys := make([]string, 0, len(related))
	for k := range related {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("---\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%s: %s\n", k, related[k]))
	}
	b.WriteString("---\n\n")
	b.WriteString(src)
	return b.String()
}
