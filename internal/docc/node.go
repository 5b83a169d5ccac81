package docc

import (
	"encoding/json"
)

// NodeKind tags the closed union of content node kinds.
type NodeKind string

const (
	// NodeText is a plain text leaf.
	NodeText NodeKind = "text"
	// NodeCodeVoice is an inline code leaf.
	NodeCodeVoice NodeKind = "codeVoice"
	// NodeParagraph wraps inline children.
	NodeParagraph NodeKind = "paragraph"
	// NodeHeading is a heading with a level and text.
	NodeHeading NodeKind = "heading"
	// NodeCodeListing is a code block; source lines may arrive as a single
	// string or a list of strings.
	NodeCodeListing NodeKind = "codeListing"
	// NodeParameters is a parameter block with named entries.
	NodeParameters NodeKind = "parameters"
	// NodeWrapper is any recognized container that only exposes children
	// (aside, unorderedList items, term lists, and similar).
	NodeWrapper NodeKind = "wrapper"
	// NodeUnknown is an unrecognized kind. Its raw children, when they can
	// be decoded, are retained so future node kinds degrade gracefully
	// instead of disappearing.
	NodeUnknown NodeKind = "unknown"
)

// Parameter is one named entry of a parameter block.
type Parameter struct {
	Name    string
	Content NodeList
}

// Node is one vertex of a document content tree.
type Node struct {
	Kind NodeKind

	// Text holds leaf text for text, codeVoice, and heading nodes.
	Text string

	// Level is the heading level, when Kind is NodeHeading.
	Level int

	// Code holds code-listing lines, when Kind is NodeCodeListing.
	Code []string

	// Parameters holds parameter entries, when Kind is NodeParameters.
	Parameters []Parameter

	// Children holds nested nodes for container kinds.
	Children NodeList
}

// NodeList decodes a child collection leniently: a missing, null, or
// non-array value collapses to an empty list instead of failing the
// enclosing document.
type NodeList []Node

// UnmarshalJSON implements lenient child-collection decoding.
func (l *NodeList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	nodes := make([]Node, 0, len(raw))
	for _, r := range raw {
		var n Node
		if err := json.Unmarshal(r, &n); err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	*l = nodes
	return nil
}

// rawNode mirrors the wire shape of a content node. Field types are loose on
// purpose: code can be a string or a list, child collections can be garbage.
type rawNode struct {
	Type          string          `json:"type"`
	Text          string          `json:"text"`
	Code          json.RawMessage `json:"code"`
	Level         int             `json:"level"`
	InlineContent NodeList        `json:"inlineContent"`
	Content       NodeList        `json:"content"`
	Parameters    []rawParameter  `json:"parameters"`
}

type rawParameter struct {
	Name    string   `json:"name"`
	Content NodeList `json:"content"`
}

// UnmarshalJSON decodes one node into the tagged union. Unknown leaf kinds
// become NodeUnknown with no children; unknown containers keep whatever
// recognized child fields they expose.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		// A non-object node (bare string, number) carries nothing we index.
		*n = Node{Kind: NodeUnknown}
		return nil
	}

	switch raw.Type {
	case "text":
		*n = Node{Kind: NodeText, Text: raw.Text}
	case "codeVoice":
		*n = Node{Kind: NodeCodeVoice, Text: decodeCodeString(raw.Code)}
	case "paragraph":
		*n = Node{Kind: NodeParagraph, Children: firstNonEmpty(raw.InlineContent, raw.Content)}
	case "heading":
		*n = Node{Kind: NodeHeading, Text: raw.Text, Level: raw.Level}
	case "codeListing":
		*n = Node{Kind: NodeCodeListing, Code: decodeCodeLines(raw.Code)}
	case "parameters":
		params := make([]Parameter, 0, len(raw.Parameters))
		for _, p := range raw.Parameters {
			params = append(params, Parameter{Name: p.Name, Content: p.Content})
		}
		*n = Node{Kind: NodeParameters, Parameters: params}
	default:
		children := firstNonEmpty(raw.Content, raw.InlineContent)
		if len(children) > 0 {
			// Forward-compatibility rule: recurse into any container that
			// exposes a recognized child collection.
			*n = Node{Kind: NodeWrapper, Children: children}
		} else {
			*n = Node{Kind: NodeUnknown, Text: raw.Text}
		}
	}
	return nil
}

// decodeCodeString decodes a codeVoice payload, which is a single string.
func decodeCodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Some producers emit codeVoice with a line array.
	lines := decodeCodeLines(raw)
	if len(lines) == 0 {
		return ""
	}
	out := lines[0]
	for _, l := range lines[1:] {
		out += " " + l
	}
	return out
}

// decodeCodeLines decodes a codeListing payload: string or list of strings.
func decodeCodeLines(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return lines
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	return nil
}

func firstNonEmpty(a, b NodeList) NodeList {
	if len(a) > 0 {
		return a
	}
	return b
}
