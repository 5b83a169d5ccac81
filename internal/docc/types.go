// Package docc models structured documentation archives: the bundle metadata
// descriptor, per-symbol and per-article documents, and their recursive
// content trees. It also owns the single plain-text extractor shared by the
// indexing pipeline and the lookup path, so indexed text and displayed text
// can never diverge.
package docc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Archive bundle layout constants.
const (
	// BundleSuffix is the reserved directory suffix marking an archive.
	BundleSuffix = ".docarchive"

	// MetadataFileName is the fixed descriptor filename inside a bundle.
	MetadataFileName = "metadata.json"

	// DataDirName is the nested directory of per-document JSON files.
	DataDirName = "data"
)

// SchemaVersion identifies the archive metadata schema.
type SchemaVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Metadata is the archive bundle descriptor loaded from metadata.json.
type Metadata struct {
	SchemaVersion     SchemaVersion `json:"schemaVersion"`
	BundleIdentifier  string        `json:"bundleIdentifier"`
	BundleDisplayName string        `json:"bundleDisplayName"`
}

// ParseMetadata decodes an archive metadata descriptor.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse archive metadata: %w", err)
	}
	return &m, nil
}

// Document kinds.
const (
	KindSymbol  = "symbol"
	KindArticle = "article"
)

// Identifier locates a document within an archive.
type Identifier struct {
	URL               string `json:"url"`
	InterfaceLanguage string `json:"interfaceLanguage,omitempty"`
}

// DocumentMetadata carries the display metadata of a document.
type DocumentMetadata struct {
	Title       string `json:"title"`
	Role        string `json:"role,omitempty"`
	RoleHeading string `json:"roleHeading,omitempty"`
	ExternalID  string `json:"externalID,omitempty"`
}

// Section is an ordered content section of a document.
type Section struct {
	Kind    string   `json:"kind,omitempty"`
	Title   string   `json:"title,omitempty"`
	Content NodeList `json:"content,omitempty"`
}

// Document is a single symbol or article loaded from an archive data file.
// It is read-only once loaded; lookup paths cache it by (archive, id).
type Document struct {
	Identifier             Identifier       `json:"identifier"`
	Kind                   string           `json:"kind"`
	Metadata               DocumentMetadata `json:"metadata"`
	Abstract               NodeList         `json:"abstract,omitempty"`
	PrimaryContentSections []Section        `json:"primaryContentSections,omitempty"`
	Sections               []Section        `json:"sections,omitempty"`
}

// ParseDocument decodes a document JSON file. Node trees are decoded
// leniently: unknown node kinds survive as opaque containers and malformed
// child collections collapse to empty rather than failing the document.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &d, nil
}

// Title returns the display title, falling back to the identifier URL tail.
func (d *Document) Title() string {
	if d.Metadata.Title != "" {
		return d.Metadata.Title
	}
	url := d.Identifier.URL
	if i := strings.LastIndex(url, "/"); i >= 0 && i+1 < len(url) {
		return url[i+1:]
	}
	return url
}

// IsArticle reports whether the document is a narrative article or tutorial.
func (d *Document) IsArticle() bool {
	switch d.Kind {
	case KindArticle:
		return true
	}
	switch strings.ToLower(d.Metadata.Role) {
	case "article", "collectiongroup", "tutorial", "project":
		return true
	}
	return false
}

// AbstractText extracts the abstract as plain text.
func (d *Document) AbstractText() string {
	return ExtractText(d.Abstract)
}

// ContentText extracts the primary content and trailing sections as one
// plain-text string. Both search engines and the lookup path use this.
func (d *Document) ContentText() string {
	var parts []string
	if s := ExtractText(d.Abstract); s != "" {
		parts = append(parts, s)
	}
	for _, sec := range d.PrimaryContentSections {
		if s := extractSection(sec); s != "" {
			parts = append(parts, s)
		}
	}
	for _, sec := range d.Sections {
		if s := extractSection(sec); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// DiscussionText extracts the primary content and trailing sections
// without the abstract, for callers that index the two separately.
func (d *Document) DiscussionText() string {
	var parts []string
	for _, sec := range d.PrimaryContentSections {
		if s := extractSection(sec); s != "" {
			parts = append(parts, s)
		}
	}
	for _, sec := range d.Sections {
		if s := extractSection(sec); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// ParameterNotes returns one plain-text entry per documented parameter,
// name first.
func (d *Document) ParameterNotes() []string {
	var notes []string
	for _, sec := range d.PrimaryContentSections {
		notes = append(notes, collectParameterNotes(sec.Content)...)
	}
	for _, sec := range d.Sections {
		notes = append(notes, collectParameterNotes(sec.Content)...)
	}
	return notes
}

// extractSection flattens one section, prefixing its title when present.
func extractSection(sec Section) string {
	body := ExtractText(sec.Content)
	if sec.Title == "" {
		return body
	}
	if body == "" {
		return sec.Title
	}
	return sec.Title + " " + body
}
