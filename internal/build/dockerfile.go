package build

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Working directory for the application inside the image.
const imageWorkdir = "/app"

// Renders the description into a Dockerfile.
//
// The output is a pure function of the description, so repeated builds of
// the same description produce identical build instructions (and hence
// content-identical images, modulo build-tool cache staleness). Layers are
// emitted in fixed order: base image, system packages, dependency install,
// source copy, entrypoint. The dependency file is copied to its
// context-relative path and installed before the rest of the source so
// that source-only changes reuse the cached dependency layers.
func (d *Description) Dockerfile() (string, error) {
	entrypoint, err := json.Marshal(d.Entrypoint)
	if err != nil {
		return "", fmt.Errorf("%w: encode entrypoint: %v", ErrMissingContext, err)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "FROM %s\n", d.BaseImage)

	if len(d.SystemPackages) > 0 {
		fmt.Fprintf(&b, "RUN apt-get update \\\n")
		fmt.Fprintf(&b, "    && apt-get install -y --no-install-recommends %s \\\n", strings.Join(d.SystemPackages, " "))
		fmt.Fprintf(&b, "    && rm -rf /var/lib/apt/lists/*\n")
	}

	fmt.Fprintf(&b, "WORKDIR %s\n", imageWorkdir)
	fmt.Fprintf(&b, "COPY %s %s\n", d.DependencyFile, d.DependencyFile)
	fmt.Fprintf(&b, "RUN python3 -m pip install --no-cache-dir --upgrade pip \\\n")
	fmt.Fprintf(&b, "    && python3 -m pip install --no-cache-dir -r %s\n", d.DependencyFile)
	fmt.Fprintf(&b, "COPY . .\n")
	fmt.Fprintf(&b, "ENTRYPOINT %s\n", entrypoint)

	return b.String(), nil
}
