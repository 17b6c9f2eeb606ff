package bundler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/samber/lo"

	"github.com/microkern/bootpack/lib/payload"
)

// Manifest declares the applications to bundle, in boot order. The bootstrap
// sequencer will submit them in exactly this order, so init and shell come
// first by convention.
type Manifest struct {
	Applications []Application `json:"applications"`
}

// Application is one manifest entry: the payload name and the binary to
// bundle under it, relative to the build root.
type Application struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ParseManifest parses and validates manifest YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Validate checks names and paths. An empty manifest is valid and assembles
// into an empty payload.
func (m *Manifest) Validate() error {
	for _, app := range m.Applications {
		if err := payload.ValidateName(app.Name); err != nil {
			return err
		}
		if app.Path == "" {
			return fmt.Errorf("%w: application %q has no path", ErrInvalidManifest, app.Name)
		}
		if filepath.IsAbs(app.Path) {
			return fmt.Errorf("%w: application %q path %q must be relative to the build root", ErrInvalidManifest, app.Name, app.Path)
		}
	}

	dupes := lo.FindDuplicatesBy(m.Applications, func(a Application) string { return a.Name })
	if len(dupes) > 0 {
		return fmt.Errorf("%w: %q", payload.ErrDuplicateName, dupes[0].Name)
	}
	return nil
}

// Names returns the manifest names in declaration order.
func (m *Manifest) Names() []string {
	return lo.Map(m.Applications, func(a Application, _ int) string { return a.Name })
}
