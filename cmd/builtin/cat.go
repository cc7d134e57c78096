package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/gridfs/cmd"
)

type CatCommand struct {
}

func (c *CatCommand) Name() string {
	return "cat"
}

func (c *CatCommand) Description() string {
	return "Print the content of data objects"
}

func (c *CatCommand) Usage() string {
	return "cat <path> [path...]"
}

func (c *CatCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 1, fmt.Errorf("usage: %s", c.Usage())
	}

	for _, path := range args.Args {
		content, err := api.ReadFile(ctx, path)
		if err != nil {
			return 1, err
		}

		if _, err := writer.Write(content); err != nil {
			return 1, err
		}
	}

	return 0, nil
}

func (c *CatCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
