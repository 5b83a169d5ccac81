package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIconAndIndent(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Status("⚡", "indexing")
	w.Status("", "detail line")

	assert.Equal(t, "⚡ indexing\n   detail line\n", buf.String())
}

func TestFormattedVariants(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Successf("indexed %d archives", 3)
	w.Warningf("skipped %d documents", 1)
	w.Errorf("failed: %s", "boom")

	out := buf.String()
	assert.Contains(t, out, "indexed 3 archives")
	assert.Contains(t, out, "skipped 1 documents")
	assert.Contains(t, out, "failed: boom")
}

func TestNewline(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Newline()
	assert.Equal(t, "\n", buf.String())
}
