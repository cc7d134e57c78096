package builtin

import (
	"github.com/mwantia/gridfs/cmd"
)

// Register wires the full builtin command set into a manager.
func Register(manager *cmd.Manager) error {
	commands := []cmd.Command{
		&LsCommand{},
		&CatCommand{},
		&StatCommand{},
		&MkdirCommand{},
		&RmCommand{},
		&MvCommand{},
		&CpCommand{},
		&TouchCommand{},
	}

	for _, command := range commands {
		if err := manager.Register(command); err != nil {
			return err
		}
	}

	return nil
}
