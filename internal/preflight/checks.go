package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/docarc/docarc/internal/config"
	"github.com/docarc/docarc/internal/docc"
	"github.com/docarc/docarc/internal/embed"
	"github.com/docarc/docarc/internal/profiling"
)

// MinDiskSpaceBytes is the minimum free disk space required for the
// index directory (100MB).
const MinDiskSpaceBytes = 100 * 1024 * 1024

// embedderProbeTimeout bounds the provider reachability check. Much
// shorter than the ingest cold timeout; doctor should answer quickly.
const embedderProbeTimeout = 10 * time.Second

// RunAll runs every preflight check against the effective configuration.
func (c *Checker) RunAll(ctx context.Context, cfg *config.Config) []CheckResult {
	return []CheckResult{
		c.CheckArchiveRoots(cfg.Archives.Roots),
		c.CheckIndexDir(cfg.Index.Path),
		c.CheckDiskSpace(cfg.Index.Path),
		c.CheckEmbedder(ctx, cfg.Embeddings),
	}
}

// CheckArchiveRoots verifies that at least one configured root exists and
// counts the archive bundles it can see.
func (c *Checker) CheckArchiveRoots(roots []string) CheckResult {
	result := CheckResult{
		Name:     "archive_roots",
		Required: true,
	}

	archives := 0
	existing := 0
	var missing []string
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			missing = append(missing, root)
			continue
		}
		existing++
		for _, e := range entries {
			if e.IsDir() && strings.HasSuffix(e.Name(), docc.BundleSuffix) {
				archives++
			}
		}
	}

	if existing == 0 {
		result.Status = StatusFail
		result.Message = "no archive root exists"
		result.Details = strings.Join(missing, ", ")
		return result
	}

	result.Message = fmt.Sprintf("%d root(s), %d archive(s)", existing, archives)
	result.Details = strings.Join(roots, ", ")
	if archives == 0 {
		result.Status = StatusWarn
		return result
	}
	result.Status = StatusPass
	return result
}

// CheckIndexDir verifies the index directory can be created and written.
func (c *Checker) CheckIndexDir(dir string) CheckResult {
	result := CheckResult{
		Name:     "index_dir",
		Required: true,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create %s: %v", dir, err)
		return result
	}

	probe := filepath.Join(dir, ".docarc-preflight")
	f, err := os.Create(probe)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("not writable: %v", err)
		return result
	}
	_ = f.Close()
	_ = os.Remove(probe)

	result.Status = StatusPass
	result.Message = dir
	return result
}

// CheckDiskSpace verifies there is enough free space for the index.
func (c *Checker) CheckDiskSpace(path string) CheckResult {
	result := CheckResult{
		Name:     "disk_space",
		Required: true,
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	available := stat.Bavail * uint64(stat.Bsize)
	result.Message = fmt.Sprintf("%s free (minimum: 100 MB)", profiling.FormatBytes(available))
	if available < MinDiskSpaceBytes {
		result.Status = StatusFail
		return result
	}
	result.Status = StatusPass
	return result
}

// CheckEmbedder verifies the configured embedding provider loads. Not
// required: search degrades to keyword ranking without a model.
func (c *Checker) CheckEmbedder(ctx context.Context, cfg config.EmbeddingsConfig) CheckResult {
	result := CheckResult{
		Name:     "embedding_model",
		Required: false,
	}

	embedder, err := embed.NewFromConfig(cfg)
	if err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}
	defer func() { _ = embedder.Close() }()

	ctx, cancel := context.WithTimeout(ctx, embedderProbeTimeout)
	defer cancel()
	if err := embedder.Load(ctx); err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s unreachable, search will be keyword-only", cfg.Provider)
		result.Details = err.Error()
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s (%s, %d dimensions)",
		cfg.Provider, embedder.ModelName(), embedder.Dimensions())
	return result
}
