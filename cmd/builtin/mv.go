package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/gridfs/cmd"
)

type MvCommand struct {
}

func (m *MvCommand) Name() string {
	return "mv"
}

func (m *MvCommand) Description() string {
	return "Move a data object or collection"
}

func (m *MvCommand) Usage() string {
	return "mv [-f] <src> <dst>"
}

func (m *MvCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return 1, fmt.Errorf("usage: %s", m.Usage())
	}

	src, dst := args.Args[0], args.Args[1]

	isDir, err := api.IsDirectory(ctx, src)
	if err != nil {
		return 1, err
	}

	if isDir {
		err = api.MoveDirectory(ctx, src, dst)
	} else {
		err = api.MoveFile(ctx, src, dst, args.Bool("force"))
	}
	if err != nil {
		return 1, err
	}

	return 0, nil
}

func (m *MvCommand) GetFlags() *cmd.CommandFlagSet {
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
