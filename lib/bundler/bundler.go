// Package bundler assembles boot payload artifacts from manifests of
// standalone application binaries.
package bundler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/microkern/bootpack/lib/logger"
	"github.com/microkern/bootpack/lib/paths"
	"github.com/microkern/bootpack/lib/payload"
)

const defaultReadConcurrency = 4

// Config controls payload assembly.
type Config struct {
	BuildRoot       string // directory manifest paths resolve under
	Alignment       uint64 // image alignment, payload.MinAlignment when zero
	MaxImageSize    uint64 // per-image ceiling in bytes, unlimited when zero
	ReadConcurrency int    // parallel binary reads, defaultReadConcurrency when zero
}

// Result describes a produced or inspected payload artifact.
type Result struct {
	Path    string
	Digest  string // hex SHA-256 of the whole artifact
	Size    int64
	Rebuilt bool // false when Ensure found the stored artifact current
	Entries []EntrySummary
}

// EntrySummary is per-application detail for inspect output and logs.
type EntrySummary struct {
	Name   string
	Offset uint64
	Size   uint64
	Digest string // hex SHA-256 of the image
}

// Manager assembles, refreshes, and inspects the boot payload artifact.
type Manager interface {
	// Build assembles the manifest into a payload artifact, replacing
	// whatever is stored. Any unreadable, empty, or oversized binary fails
	// the whole build before a single byte is written.
	Build(ctx context.Context, m *Manifest) (*Result, error)

	// Ensure is Build that skips the write when the stored artifact already
	// matches what the manifest produces now.
	Ensure(ctx context.Context, m *Manifest) (*Result, error)

	// Inspect summarizes the stored artifact.
	Inspect(ctx context.Context) (*Result, error)

	// Verify parses the stored artifact and checks it against the recorded
	// digest.
	Verify(ctx context.Context) (*Result, error)
}

type manager struct {
	paths *paths.Paths
	cfg   Config
}

// NewManager creates a bundler that stores its artifact under p.
func NewManager(p *paths.Paths, cfg Config) Manager {
	if cfg.Alignment == 0 {
		cfg.Alignment = payload.MinAlignment
	}
	if cfg.ReadConcurrency <= 0 {
		cfg.ReadConcurrency = defaultReadConcurrency
	}
	return &manager{paths: p, cfg: cfg}
}

func (m *manager) Build(ctx context.Context, manifest *Manifest) (*Result, error) {
	start := time.Now()
	if BundlerMetrics != nil && BundlerMetrics.Tracer != nil {
		var span trace.Span
		ctx, span = BundlerMetrics.Tracer.Start(ctx, "BuildPayload")
		defer span.End()
	}

	built, err := m.assemble(ctx, manifest)
	if err != nil {
		BundlerMetrics.RecordBuild(ctx, "build", start, 0, err)
		return nil, err
	}
	if err := m.store(built); err != nil {
		BundlerMetrics.RecordBuild(ctx, "build", start, 0, err)
		return nil, err
	}
	built.result.Rebuilt = true
	BundlerMetrics.RecordBuild(ctx, "build", start, built.result.Size, nil)

	logger.FromContext(ctx).Info("payload built",
		"path", built.result.Path,
		"applications", len(built.result.Entries),
		"size_bytes", built.result.Size,
		"digest", built.result.Digest,
	)
	return built.result, nil
}

func (m *manager) Ensure(ctx context.Context, manifest *Manifest) (*Result, error) {
	start := time.Now()
	if BundlerMetrics != nil && BundlerMetrics.Tracer != nil {
		var span trace.Span
		ctx, span = BundlerMetrics.Tracer.Start(ctx, "EnsurePayload")
		defer span.End()
	}

	built, err := m.assemble(ctx, manifest)
	if err != nil {
		BundlerMetrics.RecordBuild(ctx, "ensure", start, 0, err)
		return nil, err
	}

	log := logger.FromContext(ctx)
	if stored, err := os.ReadFile(m.paths.PayloadDigest()); err == nil {
		if strings.TrimSpace(string(stored)) == built.result.Digest {
			if _, err := os.Stat(m.paths.Payload()); err == nil {
				BundlerMetrics.RecordBuild(ctx, "ensure", start, built.result.Size, nil)
				log.Debug("payload current, skipping rebuild", "digest", built.result.Digest)
				return built.result, nil
			}
		}
	}

	if err := m.store(built); err != nil {
		BundlerMetrics.RecordBuild(ctx, "ensure", start, 0, err)
		return nil, err
	}
	built.result.Rebuilt = true
	BundlerMetrics.RecordBuild(ctx, "ensure", start, built.result.Size, nil)
	log.Info("payload rebuilt",
		"path", built.result.Path,
		"applications", len(built.result.Entries),
		"digest", built.result.Digest,
	)
	return built.result, nil
}

func (m *manager) Inspect(ctx context.Context) (*Result, error) {
	return InspectFile(ctx, m.paths.Payload())
}

func (m *manager) Verify(ctx context.Context) (*Result, error) {
	res, err := m.Inspect(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := os.ReadFile(m.paths.PayloadDigest())
	if err != nil {
		return nil, fmt.Errorf("read recorded digest: %w", err)
	}
	if recorded := strings.TrimSpace(string(stored)); recorded != res.Digest {
		return nil, fmt.Errorf("%w: artifact %s, recorded %s", ErrDigestMismatch, res.Digest, recorded)
	}
	return res, nil
}

// InspectFile summarizes an arbitrary payload artifact on disk.
func InspectFile(ctx context.Context, path string) (*Result, error) {
	p, closePayload, err := payload.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer closePayload()

	return &Result{
		Path:    path,
		Digest:  p.Digest(),
		Size:    int64(len(p.Bytes())),
		Entries: summarize(p),
	}, nil
}

type assembled struct {
	artifact []byte
	result   *Result
}

// assemble produces the artifact in memory. Binaries are resolved and
// stat-checked up front so every defect is reported before any read starts,
// then read concurrently; assembly order stays the manifest order.
func (m *manager) assemble(ctx context.Context, manifest *Manifest) (*assembled, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	resolved := make([]string, len(manifest.Applications))
	for i, app := range manifest.Applications {
		path, err := securejoin.SecureJoin(m.cfg.BuildRoot, app.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", app.Path, err)
		}
		fi, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %q at %s", ErrMissingBinary, app.Name, path)
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if fi.IsDir() {
			return nil, fmt.Errorf("%w: %q at %s is a directory", ErrMissingBinary, app.Name, path)
		}
		if fi.Size() == 0 {
			return nil, fmt.Errorf("%w: %q at %s", payload.ErrEmptyImage, app.Name, path)
		}
		if m.cfg.MaxImageSize > 0 && uint64(fi.Size()) > m.cfg.MaxImageSize {
			return nil, fmt.Errorf("%w: %q is %d bytes, limit %d", ErrImageTooLarge, app.Name, fi.Size(), m.cfg.MaxImageSize)
		}
		resolved[i] = path
	}

	images := make([][]byte, len(resolved))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.ReadConcurrency)
	for i, path := range resolved {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			images[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w, err := payload.NewWriterAlign(m.cfg.Alignment)
	if err != nil {
		return nil, err
	}
	for i, app := range manifest.Applications {
		if err := w.Add(app.Name, images[i]); err != nil {
			return nil, fmt.Errorf("add %q: %w", app.Name, err)
		}
	}

	artifact := w.Bytes()

	// Re-parse what was just assembled; a payload the parser rejects must
	// never reach disk.
	p, err := payload.Parse(artifact)
	if err != nil {
		return nil, fmt.Errorf("verify assembled payload: %w", err)
	}

	return &assembled{
		artifact: artifact,
		result: &Result{
			Path:    m.paths.Payload(),
			Digest:  p.Digest(),
			Size:    int64(len(artifact)),
			Entries: summarize(p),
		},
	}, nil
}

// store writes the artifact and its digest sidecar. The artifact lands via
// temp file and rename so a crash never leaves a half-written payload behind.
func (m *manager) store(b *assembled) error {
	payloadPath := m.paths.Payload()
	if err := os.MkdirAll(m.paths.DataDir(), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tempPath := payloadPath + ".tmp"
	if err := os.WriteFile(tempPath, b.artifact, 0644); err != nil {
		return fmt.Errorf("write temp payload: %w", err)
	}
	if err := os.Rename(tempPath, payloadPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename payload: %w", err)
	}

	if err := os.WriteFile(m.paths.PayloadDigest(), []byte(b.result.Digest+"\n"), 0644); err != nil {
		return fmt.Errorf("write payload digest: %w", err)
	}
	return nil
}

func summarize(p *payload.Payload) []EntrySummary {
	entries := make([]EntrySummary, 0, p.Count())
	for i, e := range p.Entries() {
		sum := sha256.Sum256(p.Image(i))
		entries = append(entries, EntrySummary{
			Name:   e.Name,
			Offset: e.Start,
			Size:   e.Length(),
			Digest: hex.EncodeToString(sum[:]),
		})
	}
	return entries
}
