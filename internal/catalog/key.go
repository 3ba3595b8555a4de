package catalog

import (
	"regexp"
	"strings"
)

// Comment keys follow the dotted convention of the comments payload:
// Assembly-CSharp.Version.<Namespace>.<TypeName>[.<MemberName>[(T1, T2)]].
// The "Version" segment is a literal, inherited from the upstream exporter.
const (
	commentKeyPrefix = "Assembly-CSharp.Version"
	defaultNamespace = "Verse"
)

// TypeCommentKey derives the comments-payload key for a type. The namespace
// is the second backslash-separated segment of the source file path; files
// without one fall back to the default namespace.
func TypeCommentKey(t *TypeRecord) string {
	ns := defaultNamespace
	if segs := strings.Split(t.File, `\`); len(segs) >= 2 {
		ns = segs[1]
	}
	return commentKeyPrefix + "." + ns + "." + t.Name
}

// MemberCommentKey derives the comments-payload key for a member of a type.
// Methods and constructors with parameters carry the parameter type list;
// everything else is keyed by bare member name.
func MemberCommentKey(t *TypeRecord, m *MemberRecord) string {
	key := TypeCommentKey(t) + "." + m.Name
	if m.Kind != MemberMethod && m.Kind != MemberConstructor {
		return key
	}
	params := SignatureParamTypes(m.Signature)
	if len(params) == 0 {
		return key
	}
	return key + "(" + strings.Join(params, ", ") + ")"
}

var leadingIdentRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// SignatureParamTypes extracts the parameter type names from a signature's
// parenthesized argument list. Default values are stripped and each type
// token is reduced to its leading identifier, with a placeholder for tokens
// the pattern cannot make sense of. Best effort over raw text, not parsing.
func SignatureParamTypes(signature string) []string {
	open := strings.Index(signature, "(")
	end := strings.LastIndex(signature, ")")
	if open < 0 || end < open {
		return nil
	}
	inner := strings.TrimSpace(signature[open+1 : end])
	if inner == "" {
		return nil
	}

	parts := strings.Split(inner, ",")
	params := make([]string, 0, len(parts))
	for _, part := range parts {
		if idx := strings.Index(part, "="); idx >= 0 {
			part = part[:idx]
		}
		part = strings.TrimSpace(part)
		ident := leadingIdentRe.FindString(part)
		switch ident {
		case "ref", "out", "in", "params", "this":
			rest := strings.TrimSpace(strings.TrimPrefix(part, ident))
			ident = leadingIdentRe.FindString(rest)
		}
		if ident == "" {
			ident = "object"
		}
		params = append(params, ident)
	}
	return params
}
