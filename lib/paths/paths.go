// Package paths provides centralized path construction for the bootpack
// data directory.
package paths

import "path/filepath"

// Filesystem structure:
// {dataDir}/
//   payload.bin          # the boot payload artifact
//   payload.bin.digest   # hex SHA-256 of the artifact
//   initramfs.cpio       # cpio export of the payload
//   initramfs.cpio.gz    # gzip-compressed cpio export
//   bootpack_embed.go    # generated kernel embedding source

// Paths provides typed path construction for the bootpack data directory.
type Paths struct {
	dataDir string
}

// New creates a new Paths instance for the given data directory.
func New(dataDir string) *Paths {
	return &Paths{dataDir: dataDir}
}

// DataDir returns the root data directory.
func (p *Paths) DataDir() string {
	return p.dataDir
}

// Payload returns the path to the payload artifact.
func (p *Paths) Payload() string {
	return filepath.Join(p.dataDir, "payload.bin")
}

// PayloadDigest returns the path to the artifact digest sidecar.
func (p *Paths) PayloadDigest() string {
	return filepath.Join(p.dataDir, "payload.bin.digest")
}

// Initramfs returns the path to the uncompressed cpio export.
func (p *Paths) Initramfs() string {
	return filepath.Join(p.dataDir, "initramfs.cpio")
}

// InitramfsGz returns the path to the gzip-compressed cpio export.
func (p *Paths) InitramfsGz() string {
	return filepath.Join(p.dataDir, "initramfs.cpio.gz")
}

// GeneratedSource returns the path to the generated embedding source file.
func (p *Paths) GeneratedSource() string {
	return filepath.Join(p.dataDir, "bootpack_embed.go")
}
