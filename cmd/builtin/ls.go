// Package builtin carries the standard command set of the command
// layer. Register wires all of them into a manager.
package builtin

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/mwantia/gridfs/cmd"
	"github.com/mwantia/gridfs/data"
)

type LsCommand struct {
}

func (ls *LsCommand) Name() string {
	return "ls"
}

func (ls *LsCommand) Description() string {
	return "List the children of a collection"
}

func (ls *LsCommand) Usage() string {
	return "ls [-l] [path]"
}

func (ls *LsCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	path := "/"
	if len(args.Args) > 0 {
		path = args.Args[0]
	}

	infos, err := api.ReadDirectory(ctx, path)
	if err != nil {
		return 1, err
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	long := args.Bool("long")
	for _, info := range infos {
		if !long {
			fmt.Fprintln(writer, info.Name)
			continue
		}

		kind := "-"
		if info.Kind == data.KindCollection {
			kind = "d"
		}

		fmt.Fprintf(writer, "%s %10d  %s  %s\n",
			kind, info.Size, info.ModifyTime.Format("2006-01-02 15:04"), info.Name)
	}

	return 0, nil
}

func (ls *LsCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"long": {
				Name:        "long",
				Short:       "l",
				Type:        "bool",
				Description: "Show kind, size and modify time",
			},
		},
	}
}
