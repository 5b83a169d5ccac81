package preflight

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docarc/docarc/internal/config"
	"github.com/docarc/docarc/internal/docc"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Archives.Roots = []string{t.TempDir()}
	cfg.Index.Path = filepath.Join(t.TempDir(), "index")
	cfg.Embeddings.Provider = "static"
	return cfg
}

func TestCheckArchiveRoots(t *testing.T) {
	c := New()

	root := t.TempDir()
	res := c.CheckArchiveRoots([]string{root})
	assert.Equal(t, StatusWarn, res.Status, "existing root without archives warns")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "SwiftUI"+docc.BundleSuffix), 0o755))
	res = c.CheckArchiveRoots([]string{root})
	assert.Equal(t, StatusPass, res.Status)
	assert.Contains(t, res.Message, "1 archive(s)")

	res = c.CheckArchiveRoots([]string{filepath.Join(root, "missing")})
	assert.Equal(t, StatusFail, res.Status)
	assert.True(t, res.IsCritical())
}

func TestCheckIndexDir(t *testing.T) {
	c := New()

	res := c.CheckIndexDir(filepath.Join(t.TempDir(), "new", "index"))
	assert.Equal(t, StatusPass, res.Status)
}

func TestCheckDiskSpace(t *testing.T) {
	c := New()

	res := c.CheckDiskSpace(t.TempDir())
	assert.Equal(t, StatusPass, res.Status)
	assert.Contains(t, res.Message, "free")
}

func TestCheckEmbedderStatic(t *testing.T) {
	c := New()
	cfg := testConfig(t)

	res := c.CheckEmbedder(context.Background(), cfg.Embeddings)
	assert.Equal(t, StatusPass, res.Status)
	assert.False(t, res.Required)
}

func TestRunAllAndSummary(t *testing.T) {
	c := New()
	cfg := testConfig(t)

	results := c.RunAll(context.Background(), cfg)
	require.Len(t, results, 4)
	assert.False(t, c.HasCriticalFailures(results))
	assert.Contains(t, []string{"ready", "ready_with_warnings"}, c.SummaryStatus(results))
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	c := New(WithOutput(&buf), WithVerbose(true))

	c.PrintResults([]CheckResult{
		{Name: "archive_roots", Status: StatusPass, Message: "1 root(s), 2 archive(s)", Details: "/tmp/archives", Required: true},
		{Name: "index_dir", Status: StatusFail, Message: "not writable", Required: true},
	})

	out := buf.String()
	assert.Contains(t, out, "[PASS] archive_roots")
	assert.Contains(t, out, "[FAIL] index_dir")
	assert.Contains(t, out, "/tmp/archives")
	assert.Contains(t, out, "Status: failed")
	assert.Contains(t, out, "1 error(s)")
}
