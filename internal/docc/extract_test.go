package docc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeNodes(t *testing.T, data string) NodeList {
	t.Helper()
	var nodes NodeList
	require.NoError(t, nodes.UnmarshalJSON([]byte(data)))
	return nodes
}

func TestExtractTextSimpleLeaves(t *testing.T) {
	nodes := decodeNodes(t, `[
		{"type": "text", "text": "A view that"},
		{"type": "codeVoice", "code": "View"},
		{"type": "text", "text": "presents."}
	]`)
	assert.Equal(t, "A view that View presents.", ExtractText(nodes))
}

func TestExtractTextParagraphRecursion(t *testing.T) {
	nodes := decodeNodes(t, `[
		{"type": "paragraph", "inlineContent": [
			{"type": "text", "text": "Use"},
			{"type": "codeVoice", "code": "body"},
			{"type": "text", "text": "to describe content."}
		]}
	]`)
	assert.Equal(t, "Use body to describe content.", ExtractText(nodes))
}

func TestExtractTextHeadingAndCodeListing(t *testing.T) {
	nodes := decodeNodes(t, `[
		{"type": "heading", "level": 2, "text": "Overview"},
		{"type": "codeListing", "syntax": "swift", "code": ["struct ContentView: View {", "}"]}
	]`)
	assert.Equal(t, "Overview struct ContentView: View { }", ExtractText(nodes))
}

func TestExtractTextCodeListingStringPayload(t *testing.T) {
	nodes := decodeNodes(t, `[
		{"type": "codeListing", "code": "let x = 1"}
	]`)
	assert.Equal(t, "let x = 1", ExtractText(nodes))
}

func TestExtractTextParameters(t *testing.T) {
	nodes := decodeNodes(t, `[
		{"type": "parameters", "parameters": [
			{"name": "animation", "content": [
				{"type": "paragraph", "inlineContent": [{"type": "text", "text": "The animation to apply."}]}
			]}
		]}
	]`)
	assert.Equal(t, "animation The animation to apply.", ExtractText(nodes))
}

func TestExtractTextUnknownLeafDropped(t *testing.T) {
	nodes := decodeNodes(t, `[
		{"type": "image", "identifier": "figure-1"},
		{"type": "text", "text": "after the image"}
	]`)
	assert.Equal(t, "after the image", ExtractText(nodes))
}

func TestExtractTextUnknownContainerRecursed(t *testing.T) {
	// Forward-compatibility rule: unknown kinds exposing a recognized child
	// collection are recursed into.
	nodes := decodeNodes(t, `[
		{"type": "aside", "style": "note", "content": [
			{"type": "paragraph", "inlineContent": [{"type": "text", "text": "Important detail."}]}
		]}
	]`)
	assert.Equal(t, "Important detail.", ExtractText(nodes))
}

func TestExtractTextEmptyTree(t *testing.T) {
	assert.Equal(t, "", ExtractText(nil))
	assert.Equal(t, "", ExtractText(NodeList{}))
}

func TestExtractTextNonArrayTree(t *testing.T) {
	// A malformed (non-sequence) content value collapses to an empty list.
	var nodes NodeList
	require.NoError(t, nodes.UnmarshalJSON([]byte(`{"oops": true}`)))
	assert.Equal(t, "", ExtractText(nodes))

	require.NoError(t, nodes.UnmarshalJSON([]byte(`"just a string"`)))
	assert.Equal(t, "", ExtractText(nodes))
}

func TestExtractTextWhitespaceFragmentsSkipped(t *testing.T) {
	nodes := decodeNodes(t, `[
		{"type": "text", "text": "   "},
		{"type": "text", "text": "kept"},
		{"type": "text", "text": ""}
	]`)
	assert.Equal(t, "kept", ExtractText(nodes))
}

func TestExtractTextDeepNesting(t *testing.T) {
	nodes := decodeNodes(t, `[
		{"type": "unorderedList", "content": [
			{"type": "listItem", "content": [
				{"type": "paragraph", "inlineContent": [{"type": "text", "text": "first"}]}
			]},
			{"type": "listItem", "content": [
				{"type": "paragraph", "inlineContent": [{"type": "text", "text": "second"}]}
			]}
		]}
	]`)
	assert.Equal(t, "first second", ExtractText(nodes))
}
