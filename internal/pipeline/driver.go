package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kvsship/kvsship/internal/build"
	"github.com/kvsship/kvsship/internal/publish"
	"github.com/kvsship/kvsship/internal/registry"
)

// A pipeline lifecycle state.
type State string

const (
	StateIdle           State = "idle"
	StateAuthenticating State = "authenticating"
	StateBuilding       State = "building"
	StatePublishing     State = "publishing"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Mints registry credentials. Implemented by registry.Authenticator.
type Authenticator interface {
	Authenticate(ctx context.Context, target registry.Target) (registry.Credential, error)
}

// Constructs image artifacts. Implemented by build.Builder.
type Builder interface {
	Build(ctx context.Context, desc build.Description) (*build.Artifact, error)
}

// Uploads artifacts to the registry. Implemented by publish.Publisher.
type Publisher interface {
	Publish(ctx context.Context, artifact *build.Artifact, cred registry.Credential, target registry.Target) (*publish.Receipt, error)
}

// A pipeline failure carrying the stage it originated in.
type StageError struct {
	Stage State // Stage that was running when the failure occurred.
	Err   error // The underlying cause, surfaced unchanged.
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Runs the three pipeline stages in order for a single invocation.
//
// The driver owns the credential, artifact, and receipt for one run;
// nothing is shared across invocations and nothing persists locally after
// the run. Stages are strictly sequential and there is no retry loop: the
// first failure moves the driver to StateFailed and subsequent stages are
// never attempted. Transient failures are retried by re-invoking the whole
// pipeline.
type Driver struct {
	auth      Authenticator
	builder   Builder
	publisher Publisher
	state     State
}

// Creates a driver over the three stage implementations.
func New(auth Authenticator, builder Builder, publisher Publisher) *Driver {
	return &Driver{
		auth:      auth,
		builder:   builder,
		publisher: publisher,
		state:     StateIdle,
	}
}

// Returns the driver's current state.
func (d *Driver) State() State {
	return d.state
}

// Executes Authenticate, Build, and Publish in order.
//
// Returns the publish receipt on success with the driver in StateDone. On
// any stage failure the driver moves to StateFailed and the originating
// error is returned wrapped in a StageError; no partial success is ever
// reported as success.
func (d *Driver) Run(ctx context.Context, target registry.Target, desc build.Description) (*publish.Receipt, error) {
	d.state = StateAuthenticating
	slog.Info("authenticating", "host", target.Host())
	cred, err := d.auth.Authenticate(ctx, target)
	if err != nil {
		return nil, d.fail(err)
	}

	d.state = StateBuilding
	artifact, err := d.builder.Build(ctx, desc)
	if err != nil {
		return nil, d.fail(err)
	}

	d.state = StatePublishing
	receipt, err := d.publisher.Publish(ctx, artifact, cred, target)
	if err != nil {
		return nil, d.fail(err)
	}

	d.state = StateDone
	slog.Info("pipeline done", "address", receipt.Address, "digest", receipt.Digest)

	return receipt, nil
}

// Moves the driver to the terminal failed state, attaching the stage that
// was running to the originating error.
func (d *Driver) fail(err error) error {
	stage := d.state
	d.state = StateFailed
	slog.Error("pipeline failed", "stage", stage, "error", err)
	return &StageError{Stage: stage, Err: err}
}
