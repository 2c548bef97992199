package build

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/containerd/platforms"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// The image produced by a successful build.
//
// The artifact is backed by an OCI image layout on disk; the publisher
// uploads it from there. A later build under the same tag supersedes the
// artifact entirely, it is never merged with previous content.
type Artifact struct {
	Digest    digest.Digest // Digest of the manifest (or multi-platform index).
	Platforms []string      // Platforms covered by the artifact, in build order.
	SizeBytes int64         // Total size of all blobs in the layout.
	LayoutDir string        // Path to the OCI image layout.
}

// Assembles an artifact from an exported OCI image layout.
//
// The layout's top-level index must reference exactly one image: either a
// single-platform manifest or a multi-platform index with one manifest per
// requested platform. Every requested platform must be present; a dropped
// platform is a build failure, not a partial success.
func readArtifact(layoutDir string, want []string) (*Artifact, error) {
	index, err := readIndex(filepath.Join(layoutDir, "index.json"))
	if err != nil {
		return nil, err
	}

	if len(index.Manifests) != 1 {
		return nil, fmt.Errorf("%w: layout index references %d images, want 1", ErrLayerFailed, len(index.Manifests))
	}

	top := index.Manifests[0]
	built, err := collectPlatforms(layoutDir, top)
	if err != nil {
		return nil, err
	}

	for _, p := range want {
		if !slices.Contains(built, p) {
			return nil, fmt.Errorf("%w: platform %s missing from built image", ErrLayerFailed, p)
		}
	}
	if len(built) != len(want) {
		return nil, fmt.Errorf("%w: built platforms %v do not match requested %v", ErrLayerFailed, built, want)
	}

	size, err := layoutSize(layoutDir)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Digest:    top.Digest,
		Platforms: built,
		SizeBytes: size,
		LayoutDir: layoutDir,
	}, nil
}

// Returns the platforms covered by a descriptor.
//
// A multi-platform index contributes the platform of each child manifest.
// A single manifest contributes the platform recorded in its image config.
func collectPlatforms(layoutDir string, desc ocispec.Descriptor) ([]string, error) {
	if desc.MediaType == ocispec.MediaTypeImageIndex ||
		desc.MediaType == "application/vnd.docker.distribution.manifest.list.v2+json" {
		var nested ocispec.Index
		if err := readBlob(layoutDir, desc.Digest, &nested); err != nil {
			return nil, err
		}

		found := make([]string, 0, len(nested.Manifests))
		for _, m := range nested.Manifests {
			if m.Platform == nil {
				continue // Attestation manifests carry no runnable platform.
			}
			if m.Platform.OS == "unknown" && m.Platform.Architecture == "unknown" {
				continue
			}
			found = append(found, platforms.Format(*m.Platform))
		}
		return found, nil
	}

	var manifest ocispec.Manifest
	if err := readBlob(layoutDir, desc.Digest, &manifest); err != nil {
		return nil, err
	}

	var config ocispec.Image
	if err := readBlob(layoutDir, manifest.Config.Digest, &config); err != nil {
		return nil, err
	}

	return []string{platforms.Format(ocispec.Platform{
		OS:           config.OS,
		Architecture: config.Architecture,
		Variant:      config.Variant,
	})}, nil
}

// Reads and decodes the layout's top-level index file.
func readIndex(path string) (*ocispec.Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read layout index: %v", ErrLayerFailed, err)
	}

	var index ocispec.Index
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("%w: decode layout index: %v", ErrLayerFailed, err)
	}

	return &index, nil
}

// Reads and decodes a JSON blob from the layout's content store.
func readBlob(layoutDir string, dgst digest.Digest, v any) error {
	path := filepath.Join(layoutDir, "blobs", dgst.Algorithm().String(), dgst.Encoded())

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read blob %s: %v", ErrLayerFailed, dgst, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decode blob %s: %v", ErrLayerFailed, dgst, err)
	}

	return nil
}

// Sums the sizes of all blobs in the layout.
func layoutSize(layoutDir string) (int64, error) {
	var total int64

	err := filepath.WalkDir(filepath.Join(layoutDir, "blobs"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: measure layout: %v", ErrLayerFailed, err)
	}

	return total, nil
}
