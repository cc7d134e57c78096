package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/gridfs/cmd"
)

type CpCommand struct {
}

func (c *CpCommand) Name() string {
	return "cp"
}

func (c *CpCommand) Description() string {
	return "Copy a data object"
}

func (c *CpCommand) Usage() string {
	return "cp [-f] <src> <dst>"
}

func (c *CpCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return 1, fmt.Errorf("usage: %s", c.Usage())
	}

	if err := api.CopyFile(ctx, args.Args[0], args.Args[1], args.Bool("force")); err != nil {
		return 1, err
	}

	return 0, nil
}

func (c *CpCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"force": {
				Name:        "force",
				Short:       "f",
				Type:        "bool",
				Description: "Overwrite an existing destination object",
			},
		},
	}
}
