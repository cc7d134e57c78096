package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/gridfs/cmd"
)

type MkdirCommand struct {
}

func (m *MkdirCommand) Name() string {
	return "mkdir"
}

func (m *MkdirCommand) Description() string {
	return "Create collections"
}

func (m *MkdirCommand) Usage() string {
	return "mkdir [-p] <path> [path...]"
}

func (m *MkdirCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 1, fmt.Errorf("usage: %s", m.Usage())
	}

	parents := args.Bool("parents")
	for _, path := range args.Args {
		var err error
		if parents {
			err = api.CreateDirectoryAll(ctx, path)
		} else {
			err = api.CreateDirectory(ctx, path)
		}
		if err != nil {
			return 1, err
		}
	}

	return 0, nil
}

func (m *MkdirCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"parents": {
				Name:        "parents",
				Short:       "p",
				Type:        "bool",
				Description: "Create missing ancestors, tolerate existing collections",
			},
		},
	}
}
