// Package publish uploads built images to the remote registry.
//
// The publisher reads the OCI image layout produced by the builder and
// writes its content (a multi-platform index with its manifests and layers,
// or a single image) to the registry under the target tag, authenticated
// with the short-lived credential from the registry package. Pushes are idempotent (same artifact, same tag,
// same resulting state) and destructive (an existing tag is repointed, not
// preserved).
//
// Concurrent publishes to the same tag race and the last writer wins; the
// registry provides no compare-and-swap for tags, so concurrent runs
// against one tag are an unsupported operational condition rather than a
// coordinated API.
package publish
