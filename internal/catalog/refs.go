package catalog

import (
	"regexp"
	"strings"
)

// Reference is a candidate type name extracted from a signature. ExistsGuess
// is a syntactic plausibility check only; callers that need ground truth must
// verify against the index.
type Reference struct {
	Name        string
	ExistsGuess bool
}

// csKeywords are C# keywords and contextual keywords excluded from reference
// candidates. The check is case-sensitive: signatures are real source text.
var csKeywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true,
	"default": true, "delegate": true, "do": true, "double": true,
	"else": true, "enum": true, "event": true, "explicit": true,
	"extern": true, "false": true, "finally": true, "fixed": true,
	"float": true, "for": true, "foreach": true, "goto": true, "if": true,
	"implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true,
	"namespace": true, "new": true, "null": true, "object": true,
	"operator": true, "out": true, "override": true, "params": true,
	"private": true, "protected": true, "public": true, "readonly": true,
	"ref": true, "return": true, "sbyte": true, "sealed": true,
	"short": true, "sizeof": true, "stackalloc": true, "static": true,
	"string": true, "struct": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true, "uint": true,
	"ulong": true, "unchecked": true, "unsafe": true, "ushort": true,
	"using": true, "var": true, "virtual": true, "void": true,
	"volatile": true, "while": true, "async": true, "await": true,
	"yield": true, "get": true, "set": true, "value": true, "dynamic": true,
}

// csBuiltins are primitive type names checked case-insensitively wherever a
// token merely needs to be ruled out as a built-in.
var csBuiltins = map[string]bool{
	"bool": true, "byte": true, "sbyte": true, "char": true, "decimal": true,
	"double": true, "float": true, "int": true, "uint": true, "long": true,
	"ulong": true, "object": true, "short": true, "ushort": true,
	"string": true, "void": true, "var": true, "dynamic": true,
}

// IsBuiltin reports whether name is a C# primitive/built-in type name,
// ignoring case.
func IsBuiltin(name string) bool {
	return csBuiltins[strings.ToLower(name)]
}

// typeTokenRe matches capitalized identifiers with an optional generic
// argument suffix. The suffix is stripped before lookup, so "List<Thing>"
// yields the candidate "List"; names buried inside generic arguments are a
// known blind spot of this extractor.
var typeTokenRe = regexp.MustCompile(`\b[A-Z][A-Za-z0-9_]*(?:<[^<>]*>)?`)

// methodNameRe finds the declared method name in an access-modifier-prefixed
// signature so that it can be excluded from the candidates. Best effort, not
// a parser.
var methodNameRe = regexp.MustCompile(
	`(?:public|private|protected|internal)\s+(?:(?:static|virtual|override|abstract|sealed|new|async|extern|unsafe)\s+)*\S+\s+([A-Za-z_]\w*)\s*\(`)

// methodFragments are substrings that usually indicate a method-name token
// ("GetThing", "IsDowned") rather than a type name.
var methodFragments = []string{"And", "Or", "Is", "Get", "Set"}

// ExtractReferences extracts plausible type-name candidates from a raw
// signature. Candidates are deduplicated by cleaned name; result order is
// unspecified. The function is pure.
func ExtractReferences(text string) []Reference {
	if text == "" {
		return nil
	}

	methodName := ""
	if m := methodNameRe.FindStringSubmatch(text); m != nil {
		methodName = m[1]
	}

	seen := make(map[string]bool)
	var refs []Reference

	for _, loc := range typeTokenRe.FindAllStringIndex(text, -1) {
		token := text[loc[0]:loc[1]]
		name := token
		if idx := strings.Index(name, "<"); idx >= 0 {
			name = name[:idx]
		}

		if csKeywords[name] || IsBuiltin(name) {
			continue
		}
		if name == methodName {
			continue
		}
		if looksLikeMethodName(name) && !typeUseContext(text, loc[0]) {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		refs = append(refs, Reference{Name: name, ExistsGuess: plausibleTypeName(name)})
	}

	return refs
}

func looksLikeMethodName(name string) bool {
	for _, frag := range methodFragments {
		if strings.Contains(name, frag) {
			return true
		}
	}
	return false
}

// typeUseContext checks the 20 characters before the token for constructor or
// typeof use, which marks the token as a genuine type despite its method-like
// shape.
func typeUseContext(text string, pos int) bool {
	start := pos - 20
	if start < 0 {
		start = 0
	}
	window := text[start:pos]
	return strings.Contains(window, "new ") || strings.Contains(window, "typeof")
}

// plausibleTypeName is the syntactic exists guess used when no index is
// available: capitalized identifier shape and length above two.
func plausibleTypeName(name string) bool {
	if len(name) <= 2 {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}
