// Package initramfs exports a boot payload as a newc cpio archive for
// loaders that consume an initramfs rather than the raw artifact.
package initramfs

import (
	"compress/gzip"
	"fmt"
	"io"
	"path"

	"github.com/u-root/u-root/pkg/cpio"

	"github.com/microkern/bootpack/lib/payload"
)

// DefaultDir is the archive directory the images land under.
const DefaultDir = "boot"

// Options configure an export.
type Options struct {
	Dir  string // directory inside the archive, DefaultDir when empty
	Gzip bool   // gzip-compress the archive at best compression
}

// Export writes every payload image to out as a newc cpio archive, one file
// per application under opts.Dir, in registry order. Records are normalized
// so identical payloads export to byte-identical archives.
func Export(p *payload.Payload, out io.Writer, opts Options) error {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}

	w := out
	var gz *gzip.Writer
	if opts.Gzip {
		var err error
		gz, err = gzip.NewWriterLevel(out, gzip.BestCompression)
		if err != nil {
			return fmt.Errorf("create gzip writer: %w", err)
		}
		w = gz
	}

	records := make([]cpio.Record, 0, p.Count()+1)
	records = append(records, cpio.Directory(dir, 0755))
	for i, e := range p.Entries() {
		records = append(records, cpio.StaticFile(path.Join(dir, e.Name), string(p.Image(i)), 0755))
	}
	cpio.MakeAllReproducible(records)

	rw := cpio.Newc.Writer(w)
	if err := cpio.WriteRecords(rw, records); err != nil {
		return fmt.Errorf("write cpio records: %w", err)
	}
	if err := cpio.WriteTrailer(rw); err != nil {
		return fmt.Errorf("write cpio trailer: %w", err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("flush gzip stream: %w", err)
		}
	}
	return nil
}
