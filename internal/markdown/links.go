package markdown

// Options controls how task descriptions are parsed and rendered.
type Options struct {
	// GFM enables the GitHub Flavored Markdown extensions (tables, task
	// lists, strikethrough, linkify).
	GFM bool
}

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

type Link struct {
	Kind        LinkKind
	Destination string
}
