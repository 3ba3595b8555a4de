// Package usage exposes the cross-cutting annotation payloads: developer
// comments, XML configuration references, and translation-key references.
// Each payload is fetched lazily, cached after the first success, and looked
// up strictly by exact key; absence is a valid no-annotation state.
package usage

// CommentsPayload is the comments JSON payload.
type CommentsPayload struct {
	Comments map[string]string `json:"comments"`
	Metadata CommentsMetadata  `json:"metadata"`
}

type CommentsMetadata struct {
	LastUpdated   string `json:"last_updated"`
	TotalComments int    `json:"total_comments"`
	Version       string `json:"version"`
	Description   string `json:"description"`
}

// XMLLink is one XML element linked to a C# class.
type XMLLink struct {
	XMLValue    string `json:"xml_value"`
	CSharpClass string `json:"csharp_class"`
	CSharpFile  string `json:"csharp_file"`
	XMLFile     string `json:"xml_file"`
	XMLLine     int    `json:"xml_line"`
}

// XMLLinksPayload is the XML usage JSON payload, grouped by the XML tag the
// class reference appeared under.
type XMLLinksPayload struct {
	GeneratedAt string               `json:"generated_at"`
	TotalLinks  int                  `json:"total_links"`
	TagGroups   map[string][]XMLLink `json:"tag_groups"`
}

// TranslationUse is one .Translate() call site linked to the XML files
// defining its key.
type TranslationUse struct {
	CSharpFile string   `json:"csharp_file"`
	CSharpLine int      `json:"csharp_line"`
	CSharpCode string   `json:"csharp_code"`
	XMLFiles   []string `json:"xml_files"`
}

// TranslationLinksPayload is the translation usage JSON payload, keyed by
// translation key.
type TranslationLinksPayload struct {
	GeneratedAt      string                      `json:"generated_at"`
	TranslationLinks map[string][]TranslationUse `json:"translation_links"`
}
