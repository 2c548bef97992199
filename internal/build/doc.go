// Package build constructs container images from declarative descriptions.
//
// A Description names the base image, the ordered system packages, the
// application dependency file, the source context, the entrypoint, and the
// target platforms. The builder renders it into a Dockerfile with a fixed
// layer order chosen for cache reuse (stable layers first, volatile layers
// last), then solves it on a BuildKit daemon and exports the result as an
// OCI image layout on disk.
//
// Multi-platform descriptions produce a single index referencing one image
// per platform, so the consumer container runs identically whether it is
// scheduled on an ARM or x86 host. Validation failures surface as
// ErrMissingContext before any daemon contact; solve and export failures
// surface as ErrLayerFailed with the platform and cause attached.
//
// Example usage:
//
//	builder := &build.Builder{Output: "dist/layout"}
//	artifact, err := builder.Build(ctx, build.Description{
//	    BaseImage:      "python:3.10-slim",
//	    SystemPackages: []string{"ffmpeg"},
//	    DependencyFile: "requirements.txt",
//	    ContextDir:     ".",
//	    Entrypoint:     []string{"python3", "kvs_consumer_library_example.py"},
//	    Platforms:      []string{"linux/amd64", "linux/arm64"},
//	})
//	if err != nil {
//	    return err
//	}
package build
