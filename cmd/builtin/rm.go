package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/gridfs/cmd"
)

type RmCommand struct {
}

func (r *RmCommand) Name() string {
	return "rm"
}

func (r *RmCommand) Description() string {
	return "Remove data objects or collections"
}

func (r *RmCommand) Usage() string {
	return "rm [-r] <path> [path...]"
}

func (r *RmCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 1, fmt.Errorf("usage: %s", r.Usage())
	}

	recursive := args.Bool("recursive")
	for _, path := range args.Args {
		isDir, err := api.IsDirectory(ctx, path)
		if err != nil {
			return 1, err
		}

		if isDir {
			err = api.RemoveDirectory(ctx, path, recursive)
		} else {
			err = api.UnlinkFile(ctx, path)
		}
		if err != nil {
			return 1, err
		}
	}

	return 0, nil
}

func (r *RmCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"recursive": {
				Name:        "recursive",
				Short:       "r",
				Type:        "bool",
				Description: "Remove collections with everything below them",
			},
		},
	}
}
