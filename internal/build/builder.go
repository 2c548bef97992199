package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/buildkit/client"

	"github.com/kvsship/kvsship/internal/paths"
)

// Default BuildKit daemon address when none is configured.
const DefaultAddress = "unix:///run/buildkit/buildkitd.sock"

// Constructs container images from build descriptions.
//
// The builder delegates layer construction to a BuildKit daemon via the
// dockerfile frontend. A single solve covers all target platforms; BuildKit
// builds the per-platform layer stacks concurrently (they share no mutable
// state) and the solve returns only once every platform has completed, which
// is the barrier before the multi-platform manifest is assembled.
type Builder struct {
	Address string // BuildKit daemon address. Empty uses DefaultAddress.
	Output  string // Directory receiving the exported OCI image layout.
}

// Builds the described image for every target platform.
//
// The description is validated before any daemon contact, so a missing
// context or dependency file fails without network I/O. On success the
// exported OCI layout holds a single index referencing exactly one image
// per requested platform, and the returned artifact records its digest,
// platform set, and size. The digest is a pure function of the
// description's content, modulo build-cache staleness.
func (b *Builder) Build(ctx context.Context, desc Description) (*Artifact, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	targets, err := desc.NormalizedPlatforms()
	if err != nil {
		return nil, err
	}

	dockerfile, err := desc.Dockerfile()
	if err != nil {
		return nil, err
	}

	slog.Info("building image",
		"context", desc.ContextDir,
		"base", desc.BaseImage,
		"platforms", targets,
	)

	dockerfileDir, err := os.MkdirTemp("", "kvsship-dockerfile-")
	if err != nil {
		return nil, fmt.Errorf("%w: stage dockerfile: %v", ErrLayerFailed, err)
	}
	defer func() {
		_ = os.RemoveAll(dockerfileDir)
	}()

	if err := os.WriteFile(filepath.Join(dockerfileDir, "Dockerfile"), []byte(dockerfile), paths.DefaultFileMode); err != nil {
		return nil, fmt.Errorf("%w: stage dockerfile: %v", ErrLayerFailed, err)
	}

	if err := os.MkdirAll(b.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %v", ErrLayerFailed, err)
	}

	if err := b.solve(ctx, desc.ContextDir, dockerfileDir, targets); err != nil {
		return nil, err
	}

	artifact, err := readArtifact(b.Output, targets)
	if err != nil {
		return nil, err
	}

	slog.Info("image built",
		"digest", artifact.Digest,
		"platforms", artifact.Platforms,
		"size_bytes", artifact.SizeBytes,
	)

	return artifact, nil
}

// Runs a single BuildKit solve covering all target platforms.
//
// The result is exported as an OCI image layout into the builder's output
// directory. Any solve failure aborts the whole build; the remaining
// platforms are not completed independently.
func (b *Builder) solve(ctx context.Context, contextDir, dockerfileDir string, targets []string) error {
	address := b.Address
	if address == "" {
		address = DefaultAddress
	}

	bk, err := client.New(ctx, address)
	if err != nil {
		return fmt.Errorf("%w: connect buildkit at %s: %v", ErrLayerFailed, address, err)
	}
	defer func() {
		_ = bk.Close()
	}()

	solveOpt := client.SolveOpt{
		Frontend: "dockerfile.v0",
		FrontendAttrs: map[string]string{
			"filename": "Dockerfile",
			"platform": strings.Join(targets, ","),
		},
		LocalDirs: map[string]string{
			"context":    contextDir,
			"dockerfile": dockerfileDir,
		},
		Exports: []client.ExportEntry{
			{
				Type:      client.ExporterOCI,
				OutputDir: b.Output,
				Attrs: map[string]string{
					"tar": "false",
				},
			},
		},
	}

	resp, err := bk.Solve(ctx, nil, solveOpt, nil)
	if err != nil {
		return fmt.Errorf("%w: platforms %s: %v", ErrLayerFailed, strings.Join(targets, ","), err)
	}

	slog.Debug("buildkit solve completed",
		"digest", resp.ExporterResponse["containerimage.digest"],
	)

	return nil
}
