//go:build ignore

// Package main generates synthetic documentation archives for benchmarking.
// Usage: go run scripts/generate-test-corpus.go -archives 4 -docs 500 -output testdata/bench
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numArchives = flag.Int("archives", 4, "Number of archives to generate")
	numDocs     = flag.Int("docs", 500, "Number of documents per archive")
	outputDir   = flag.String("output", "testdata/bench", "Output directory")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var frameworks = []string{"SwiftUI", "UIKit", "Foundation", "Combine", "CoreData", "AVFoundation", "MapKit", "CloudKit"}

var symbolNouns = []string{"View", "State", "Binding", "Publisher", "Request", "Session", "Animator", "Layout", "Gesture", "Scene", "Context", "Store"}

var sentenceParts = []string{
	"manages the lifecycle of its owning container",
	"reads and writes a value owned by the framework",
	"coordinates updates between the model and the interface",
	"performs its work asynchronously on a background queue",
	"caches intermediate results between invocations",
	"propagates changes to every observing view",
	"validates its input before dispatching the operation",
	"schedules layout passes in response to state changes",
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if *numArchives > len(frameworks) {
		*numArchives = len(frameworks)
	}

	for a := 0; a < *numArchives; a++ {
		name := frameworks[a]
		bundle := filepath.Join(*outputDir, name+".docarchive")
		dataDir := filepath.Join(bundle, "data", "documentation", strings.ToLower(name))
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			fatal(err)
		}
		if err := writeMetadata(bundle, name); err != nil {
			fatal(err)
		}
		for d := 0; d < *numDocs; d++ {
			if err := writeSymbol(dataDir, name, d, rng); err != nil {
				fatal(err)
			}
		}
		fmt.Printf("generated %s (%d documents)\n", bundle, *numDocs)
	}
}

func writeMetadata(bundle, name string) error {
	meta := map[string]any{
		"schemaVersion":     map[string]int{"major": 0, "minor": 3, "patch": 0},
		"bundleIdentifier":  "com.example." + strings.ToLower(name),
		"bundleDisplayName": name,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(bundle, "metadata.json"), data, 0o644)
}

func writeSymbol(dataDir, archive string, n int, rng *rand.Rand) error {
	noun := symbolNouns[rng.Intn(len(symbolNouns))]
	title := fmt.Sprintf("%s%d", noun, n)
	slug := strings.ToLower(title)

	var abstract strings.Builder
	fmt.Fprintf(&abstract, "A %s that %s.", strings.ToLower(noun), sentenceParts[rng.Intn(len(sentenceParts))])

	var discussion strings.Builder
	for i := 0; i < 3+rng.Intn(5); i++ {
		fmt.Fprintf(&discussion, "The %s %s. ", strings.ToLower(noun), sentenceParts[rng.Intn(len(sentenceParts))])
	}

	doc := map[string]any{
		"identifier": map[string]string{
			"url": fmt.Sprintf("doc://com.example.%s/documentation/%s/%s",
				strings.ToLower(archive), strings.ToLower(archive), slug),
		},
		"kind":     "symbol",
		"metadata": map[string]string{"title": title, "role": "symbol"},
		"abstract": []map[string]string{{"type": "text", "text": abstract.String()}},
		"primaryContentSections": []map[string]any{{
			"kind": "content",
			"content": []map[string]any{{
				"type":    "paragraph",
				"inlineContent": []map[string]string{{"type": "text", "text": discussion.String()}},
			}},
		}},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dataDir, slug+".json"), data, 0o644)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
