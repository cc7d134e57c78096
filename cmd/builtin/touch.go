package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/gridfs/cmd"
)

type TouchCommand struct {
}

func (t *TouchCommand) Name() string {
	return "touch"
}

func (t *TouchCommand) Description() string {
	return "Create empty data objects"
}

func (t *TouchCommand) Usage() string {
	return "touch <path> [path...]"
}

func (t *TouchCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 1, fmt.Errorf("usage: %s", t.Usage())
	}

	for _, path := range args.Args {
		exists, err := api.Exists(ctx, path)
		if err != nil {
			return 1, err
		}
		if exists {
			continue
		}

		if err := api.WriteFile(ctx, path, nil); err != nil {
			return 1, err
		}
	}

	return 0, nil
}

func (t *TouchCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
