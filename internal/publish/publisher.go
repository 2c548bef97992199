package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/layout"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/opencontainers/go-digest"

	"github.com/kvsship/kvsship/internal/build"
	"github.com/kvsship/kvsship/internal/registry"
)

// Confirmation of a completed publish.
type Receipt struct {
	Address  string        // Fully qualified image address the tag now resolves to.
	Digest   digest.Digest // Digest of the pushed index or manifest.
	PushedAt time.Time     // When the upload completed.
}

// Uploads built artifacts to the remote registry.
//
// Tagging is idempotent and destructive: pushing under an existing tag
// atomically repoints it at the new content, and the previous image remains
// reachable only by digest if the registry retains it. Concurrent publishes
// to the same tag are unsupported; registry tags offer no compare-and-swap,
// so the last writer wins and callers must serialize runs externally.
type Publisher struct{}

// Uploads the artifact's layers and manifest under the target tag.
//
// The credential is checked for expiry before any upload begins; an expired
// credential fails with ErrCredentialExpired and leaves the remote tag
// untouched. On success, any subsequent pull of the target address returns
// the pushed artifact.
func (p *Publisher) Publish(ctx context.Context, artifact *build.Artifact, cred registry.Credential, target registry.Target) (*Receipt, error) {
	if cred.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: expired at %s", ErrCredentialExpired, cred.ExpiresAt.Format(time.RFC3339))
	}

	ref, err := name.ParseReference(target.Address())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", registry.ErrInvalidTarget, err)
	}

	content, err := loadPushable(artifact.LayoutDir)
	if err != nil {
		return nil, err
	}

	slog.Info("publishing image",
		"address", target.Address(),
		"digest", artifact.Digest,
		"platforms", artifact.Platforms,
	)

	return push(ctx, ref, content, cred.Basic())
}

// Content that can be uploaded under a tag: an image or an image index.
type pushable interface {
	Digest() (v1.Hash, error)
}

// Writes the content and everything it references to the registry.
func push(ctx context.Context, ref name.Reference, content pushable, auth authn.Authenticator) (*Receipt, error) {
	var err error
	switch c := content.(type) {
	case v1.ImageIndex:
		err = remote.WriteIndex(ref, c, remote.WithContext(ctx), remote.WithAuth(auth))
	case v1.Image:
		err = remote.Write(ref, c, remote.WithContext(ctx), remote.WithAuth(auth))
	default:
		return nil, fmt.Errorf("%w: unsupported content %T", ErrBadArtifact, content)
	}
	if err != nil {
		return nil, classifyPushFailure(err)
	}

	h, err := content.Digest()
	if err != nil {
		return nil, fmt.Errorf("%w: digest pushed content: %v", ErrBadArtifact, err)
	}

	receipt := &Receipt{
		Address:  ref.Name(),
		Digest:   digest.Digest(h.String()),
		PushedAt: time.Now().UTC(),
	}

	slog.Info("image published", "address", receipt.Address, "digest", receipt.Digest)

	return receipt, nil
}

// Loads the pushable content from an exported OCI image layout.
//
// BuildKit's OCI exporter writes a top-level index.json containing a single
// descriptor that points at the real image index (or manifest). Pushing the
// wrapper would publish an index wrapping the actual content, and its digest
// would not match the artifact digest reported by the builder, so a sole
// child is unwrapped and pushed directly whether it is an index or a single
// image. Failures here are local I/O on the layout, before any upload
// begins, and surface as ErrBadArtifact rather than a transport error.
func loadPushable(layoutDir string) (pushable, error) {
	path, err := layout.FromPath(layoutDir)
	if err != nil {
		return nil, fmt.Errorf("%w: open layout %q: %v", ErrBadArtifact, layoutDir, err)
	}

	index, err := path.ImageIndex()
	if err != nil {
		return nil, fmt.Errorf("%w: read layout index: %v", ErrBadArtifact, err)
	}

	manifest, err := index.IndexManifest()
	if err != nil {
		return nil, fmt.Errorf("%w: decode layout index: %v", ErrBadArtifact, err)
	}

	if len(manifest.Manifests) == 1 {
		child := manifest.Manifests[0]
		switch {
		case child.MediaType.IsIndex():
			inner, err := index.ImageIndex(child.Digest)
			if err != nil {
				return nil, fmt.Errorf("%w: descend into nested index: %v", ErrBadArtifact, err)
			}
			return inner, nil
		case child.MediaType.IsImage():
			image, err := index.Image(child.Digest)
			if err != nil {
				return nil, fmt.Errorf("%w: read single image: %v", ErrBadArtifact, err)
			}
			return image, nil
		}
	}

	return index, nil
}

// Maps an upload failure into the publish error taxonomy.
//
// The registry rejecting the session (401) means the credential expired
// mid-push. Throttling and denial codes map to quota exhaustion. Everything
// else at the transport or network level is an interrupted upload; the
// registry is assumed to garbage-collect incomplete layers.
func classifyPushFailure(err error) error {
	var terr *transport.Error
	if errors.As(err, &terr) {
		if terr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: registry rejected session: %v", ErrCredentialExpired, err)
		}
		if terr.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		for _, diag := range terr.Errors {
			switch diag.Code {
			case transport.TooManyRequestsErrorCode, transport.DeniedErrorCode:
				return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
			}
		}
	}

	return fmt.Errorf("%w: %v", ErrNetworkInterrupted, err)
}
