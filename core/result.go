package core

// FinalSelectionLabel labels the synthesized artifact appended after the
// carried-over participant replies.
const FinalSelectionLabel = "SELECTED FINAL DESCRIPTION"

// ResultEntry is the output unit of a run handed to result sinks.
// DisplayTag is opaque to the engine; renderers interpret it.
type ResultEntry struct {
	Label      string `json:"label" yaml:"label"`
	DisplayTag string `json:"display_tag" yaml:"display_tag"`
	Content    string `json:"content" yaml:"content"`
}

// Brief is the shared topic every participant works from.
type Brief struct {
	// Category names the kind of item (e.g. "TShirt").
	Category string `json:"category"`
	// Description is the caller-supplied base description.
	Description string `json:"description"`
	// Context is an opaque blob describing external assets, injected verbatim.
	Context string `json:"context"`
}
