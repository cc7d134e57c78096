package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/gridfs/cmd"
	"github.com/mwantia/gridfs/data"
)

type StatCommand struct {
}

func (s *StatCommand) Name() string {
	return "stat"
}

func (s *StatCommand) Description() string {
	return "Show the metadata of a node"
}

func (s *StatCommand) Usage() string {
	return "stat <path>"
}

func (s *StatCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", s.Usage())
	}

	info, err := api.StatMetadata(ctx, args.Args[0], data.StatAll)
	if err != nil {
		return 1, err
	}

	fmt.Fprintf(writer, "Name:   %s\n", info.Name)
	fmt.Fprintf(writer, "Path:   %s\n", info.Path)
	fmt.Fprintf(writer, "Kind:   %s\n", info.Kind)
	fmt.Fprintf(writer, "Size:   %d\n", info.Size)
	fmt.Fprintf(writer, "Create: %s\n", info.CreateTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "Modify: %s\n", info.ModifyTime.Format("2006-01-02 15:04:05"))
	if info.Owner != "" {
		fmt.Fprintf(writer, "Owner:  %s\n", info.Owner)
	}
	if info.HasChecksum() {
		fmt.Fprintf(writer, "Sum:    %s\n", info.Checksum)
	}

	return 0, nil
}

func (s *StatCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
