package docc

import (
	"strings"
)

// ExtractText flattens a content tree into a single plain-text string,
// depth-first and left-to-right, joining fragments with single spaces.
//
// Unknown leaf kinds contribute nothing; unknown containers that exposed a
// recognized child collection are recursed into. A nil or empty tree yields
// the empty string, never an error.
func ExtractText(nodes NodeList) string {
	var frags []string
	collectText(nodes, &frags)
	return strings.Join(frags, " ")
}

// collectText appends the trimmed text fragments of each node in order.
func collectText(nodes NodeList, frags *[]string) {
	for _, n := range nodes {
		switch n.Kind {
		case NodeText, NodeCodeVoice, NodeHeading:
			appendFragment(frags, n.Text)
		case NodeCodeListing:
			for _, line := range n.Code {
				appendFragment(frags, line)
			}
		case NodeParameters:
			for _, p := range n.Parameters {
				appendFragment(frags, p.Name)
				collectText(p.Content, frags)
			}
		case NodeParagraph, NodeWrapper:
			collectText(n.Children, frags)
		case NodeUnknown:
			// Unknown leaves are dropped; containers were already folded
			// into NodeWrapper at decode time.
		}
	}
}

// collectParameterNotes gathers one entry per parameter block entry,
// recursing through containers the same way collectText does.
func collectParameterNotes(nodes NodeList) []string {
	var notes []string
	for _, n := range nodes {
		switch n.Kind {
		case NodeParameters:
			for _, p := range n.Parameters {
				note := strings.TrimSpace(p.Name + " " + ExtractText(p.Content))
				if note != "" {
					notes = append(notes, note)
				}
			}
		case NodeParagraph, NodeWrapper:
			notes = append(notes, collectParameterNotes(n.Children)...)
		}
	}
	return notes
}

func appendFragment(frags *[]string, s string) {
	s = strings.TrimSpace(s)
	if s != "" {
		*frags = append(*frags, s)
	}
}
