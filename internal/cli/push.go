package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/kvsship/kvsship/internal/build"
	"github.com/kvsship/kvsship/internal/paths"
	"github.com/kvsship/kvsship/internal/pipeline"
	"github.com/kvsship/kvsship/internal/publish"
	"github.com/kvsship/kvsship/internal/registry"
)

// Represents the 'kvsship push' command.
//
// The command takes no flags of its own: the pipeline reads its fixed
// configuration (registry target, build description) from the config file
// so every invocation publishes to the same stable address.
type PushCmd struct{}

// Executes the push command.
//
// Runs the full pipeline: authenticate against the registry, build the
// image for every target platform, publish under the configured tag. The
// first stage failure aborts the run and the process exits non-zero.
func (c *PushCmd) Run(ctx context.Context) error {
	cfg, err := pipeline.Load(RootCmd.Config)
	if err != nil {
		return err
	}

	target := cfg.Target()
	if err := target.Validate(); err != nil {
		return err
	}

	auth, err := registry.NewAuthenticator(ctx, target)
	if err != nil {
		return err
	}

	output, err := buildOutputDir()
	if err != nil {
		return err
	}
	defer func() {
		_ = os.RemoveAll(output)
	}()

	builder := &build.Builder{
		Address: cfg.BuildkitAddress(),
		Output:  output,
	}

	driver := pipeline.New(auth, builder, &publish.Publisher{})

	receipt, err := driver.Run(ctx, target, cfg.Description())
	if err != nil {
		return err
	}

	fmt.Printf("published %s\n", receipt.Address)
	return nil
}

// Creates a fresh directory for the run's exported image layout.
//
// Each run gets its own directory so a stale layout from an earlier run
// can never leak into the published artifact. The caller removes it when
// the run ends.
func buildOutputDir() (string, error) {
	if err := os.MkdirAll(paths.Cache(), paths.DefaultDirMode); err != nil {
		return "", err
	}
	return os.MkdirTemp(paths.Cache(), "build-")
}
