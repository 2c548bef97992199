package cli

import (
	"context"
	"fmt"

	"github.com/kvsship/kvsship/internal"
)

// Represents the 'kvsship version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
