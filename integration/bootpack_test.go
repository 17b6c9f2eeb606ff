package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/u-root/u-root/pkg/cpio"

	"github.com/microkern/bootpack/lib/boot"
	"github.com/microkern/bootpack/lib/bundler"
	"github.com/microkern/bootpack/lib/initramfs"
	"github.com/microkern/bootpack/lib/paths"
	"github.com/microkern/bootpack/lib/payload"
	"github.com/microkern/bootpack/lib/registry"
)

type recordingLoader struct {
	requests []boot.Request
}

func (l *recordingLoader) CreateProcess(ctx context.Context, req boot.Request) error {
	l.requests = append(l.requests, req)
	return nil
}

// TestBuildToBootstrap walks the whole pipeline: application binaries on
// disk, a manifest, a built payload artifact, the registry over a mapped
// artifact, and a bootstrap sequence against it. It verifies that:
//   - the artifact round-trips every image byte for byte
//   - registry order matches manifest order
//   - the sequencer submits init first, shell second
//   - Ensure skips the rebuild once the artifact is current
func TestBuildToBootstrap(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tmpDir := t.TempDir()
	buildRoot := filepath.Join(tmpDir, "build")
	require.NoError(t, os.MkdirAll(filepath.Join(buildRoot, "bin"), 0755))

	binaries := map[string][]byte{
		"init":   randomImage(t, 40*1024),
		"shell":  randomImage(t, 96*1024),
		"logged": randomImage(t, 512),
	}
	for name, data := range binaries {
		path := filepath.Join(buildRoot, "bin", name)
		require.NoError(t, os.WriteFile(path, data, 0755))
	}

	manifest := &bundler.Manifest{
		Applications: []bundler.Application{
			{Name: "init", Path: "bin/init"},
			{Name: "shell", Path: "bin/shell"},
			{Name: "logged", Path: "bin/logged"},
		},
	}
	require.NoError(t, manifest.Validate())

	p := paths.New(filepath.Join(tmpDir, "dist"))
	mgr := bundler.NewManager(p, bundler.Config{BuildRoot: buildRoot})

	t.Log("Building payload artifact")
	res, err := mgr.Build(ctx, manifest)
	require.NoError(t, err)
	assert.True(t, res.Rebuilt)
	assert.Len(t, res.Entries, 3)

	// The artifact on disk must parse and carry every image unchanged.
	pl, closePayload, err := payload.Open(p.Payload())
	require.NoError(t, err)
	defer closePayload()

	reg := registry.New(pl)
	require.Equal(t, 3, reg.Count())
	assert.Equal(t, []string{"init", "shell", "logged"}, reg.Names())
	for i, name := range reg.Names() {
		img, err := reg.ImageAt(i)
		require.NoError(t, err)
		assert.Equal(t, binaries[name], img.Bytes, "image %q", name)
	}

	idx, ok := reg.FindByName("shell")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	t.Log("Running bootstrap sequence")
	loader := &recordingLoader{}
	seq := boot.NewSequencer(reg, loader)
	require.NoError(t, seq.Run(ctx))
	require.Len(t, loader.requests, 3)
	assert.Equal(t, "init", loader.requests[0].Name)
	assert.Equal(t, "shell", loader.requests[1].Name)
	assert.Equal(t, boot.PhaseComplete, seq.Phase())

	t.Log("Verifying stored digest")
	verified, err := mgr.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Digest, verified.Digest)

	t.Log("Ensuring against an unchanged manifest")
	again, err := mgr.Ensure(ctx, manifest)
	require.NoError(t, err)
	assert.False(t, again.Rebuilt, "unchanged inputs should not rebuild")
	assert.Equal(t, res.Digest, again.Digest)

	// Touching a binary must flip Ensure back into a rebuild.
	binaries["shell"] = randomImage(t, 96*1024)
	require.NoError(t, os.WriteFile(filepath.Join(buildRoot, "bin", "shell"), binaries["shell"], 0755))
	changed, err := mgr.Ensure(ctx, manifest)
	require.NoError(t, err)
	assert.True(t, changed.Rebuilt)
	assert.NotEqual(t, res.Digest, changed.Digest)
}

// TestExportRoundTrip builds a payload and exports it as an initramfs,
// then reads the archive back and checks every application landed under
// the boot directory with its exact bytes.
func TestExportRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tmpDir := t.TempDir()
	buildRoot := filepath.Join(tmpDir, "build")
	require.NoError(t, os.MkdirAll(buildRoot, 0755))

	initImage := randomImage(t, 8192)
	shellImage := randomImage(t, 16384)
	require.NoError(t, os.WriteFile(filepath.Join(buildRoot, "init"), initImage, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(buildRoot, "shell"), shellImage, 0755))

	manifest := &bundler.Manifest{
		Applications: []bundler.Application{
			{Name: "init", Path: "init"},
			{Name: "shell", Path: "shell"},
		},
	}

	p := paths.New(filepath.Join(tmpDir, "dist"))
	mgr := bundler.NewManager(p, bundler.Config{BuildRoot: buildRoot})
	_, err := mgr.Build(ctx, manifest)
	require.NoError(t, err)

	pl, closePayload, err := payload.Open(p.Payload())
	require.NoError(t, err)
	defer closePayload()

	var archive bytes.Buffer
	require.NoError(t, initramfs.Export(pl, &archive, initramfs.Options{}))

	rr := cpio.Newc.Reader(bytes.NewReader(archive.Bytes()))
	records, err := cpio.ReadAllRecords(rr)
	require.NoError(t, err)
	require.Len(t, records, 3)

	byName := map[string]cpio.Record{}
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	require.Contains(t, byName, "boot")
	require.Contains(t, byName, "boot/init")
	require.Contains(t, byName, "boot/shell")
	assert.Equal(t, initImage, recordContent(t, byName["boot/init"]))
	assert.Equal(t, shellImage, recordContent(t, byName["boot/shell"]))
}

func randomImage(t *testing.T, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)
	return data
}

func recordContent(t *testing.T, rec cpio.Record) []byte {
	t.Helper()
	data := make([]byte, rec.FileSize)
	n, err := rec.ReadAt(data, 0)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, int(rec.FileSize), n)
	return data
}
