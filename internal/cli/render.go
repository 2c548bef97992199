package cli

import (
	"context"
	"fmt"

	"github.com/kvsship/kvsship/internal/pipeline"
)

// Represents the 'kvsship render' command.
type RenderCmd struct{}

// Executes the render command.
//
// Prints the Dockerfile the push command would hand to the builder, so the
// effective build instructions stay inspectable without running a build.
func (c *RenderCmd) Run(ctx context.Context) error {
	cfg, err := pipeline.Load(RootCmd.Config)
	if err != nil {
		return err
	}

	desc := cfg.Description()
	dockerfile, err := desc.Dockerfile()
	if err != nil {
		return err
	}

	fmt.Print(dockerfile)
	return nil
}
