package build

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/containerd/platforms"
)

// Declares the image to construct.
//
// The field order mirrors the layer order of the final image: base image,
// system packages, application dependencies, source tree, entrypoint. Layers
// that change rarely come first so that frequently changing layers (the
// dependency file and the source tree) invalidate as little of the build
// cache as possible across repeated builds.
type Description struct {
	BaseImage      string   // Base layer reference (e.g., "python:3.10-slim").
	SystemPackages []string // OS packages installed in declaration order.
	DependencyFile string   // Application dependency manifest, relative to ContextDir.
	ContextDir     string   // Source tree copied into the image.
	Entrypoint     []string // Startup command; must exist in the final image filesystem.
	Platforms      []string // Target platforms (e.g., "linux/amd64", "linux/arm64").
}

// Checks that the description can be built.
//
// The build context must exist and be readable, and the dependency file must
// be present inside it; both are checked before any daemon or network
// contact so a broken context fails fast. The entrypoint is checked for
// shape only: whether it names an executable present in the final image can
// only be observed by running the image, so the description is trusted on
// that point.
func (d *Description) Validate() error {
	if d.BaseImage == "" {
		return fmt.Errorf("%w: base image is empty", ErrMissingContext)
	}
	if len(d.Entrypoint) == 0 || d.Entrypoint[0] == "" {
		return fmt.Errorf("%w: entrypoint is empty", ErrMissingContext)
	}
	if d.DependencyFile == "" {
		return fmt.Errorf("%w: dependency file is empty", ErrMissingContext)
	}

	info, err := os.Stat(d.ContextDir)
	if err != nil {
		return fmt.Errorf("%w: context %q: %v", ErrMissingContext, d.ContextDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: context %q is not a directory", ErrMissingContext, d.ContextDir)
	}

	depPath := filepath.Join(d.ContextDir, d.DependencyFile)
	if _, err := os.Stat(depPath); err != nil {
		return fmt.Errorf("%w: dependency file %q: %v", ErrMissingContext, depPath, err)
	}

	if _, err := d.NormalizedPlatforms(); err != nil {
		return err
	}

	return nil
}

// Returns the target platforms parsed into canonical form.
//
// Duplicates (after normalization) collapse to the first occurrence;
// declaration order is otherwise preserved. An empty platform set defaults
// to linux/amd64.
func (d *Description) NormalizedPlatforms() ([]string, error) {
	if len(d.Platforms) == 0 {
		return []string{"linux/amd64"}, nil
	}

	normalized := make([]string, 0, len(d.Platforms))
	for _, raw := range d.Platforms {
		p, err := platforms.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: platform %q: %v", ErrMissingContext, raw, err)
		}
		formatted := platforms.Format(p)
		if !slices.Contains(normalized, formatted) {
			normalized = append(normalized, formatted)
		}
	}

	return normalized, nil
}
