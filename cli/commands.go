package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwantia/gridfs/cmd"
	"github.com/mwantia/gridfs/cmd/builtin"
	"github.com/mwantia/gridfs/store"
)

func newExecCommand() *cobra.Command {
	execCmd := &cobra.Command{
		Use:   "exec -- <command> [args...]",
		Short: "Run a single filesystem command",
		Long:  "Run one command (ls, cat, mkdir, ...) against the configured store and exit.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			fs, err := openFS()
			if err != nil {
				return err
			}
			defer fs.Close()

			manager := cmd.NewManager(fs)
			if err := builtin.Register(manager); err != nil {
				return err
			}

			code, err := manager.Execute(c.Context(), os.Stdout, args...)
			if err != nil {
				return err
			}
			if code != 0 {
				os.Exit(code)
			}

			return nil
		},
	}

	return execCmd
}

func newShellCommand() *cobra.Command {
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively",
		Long:  "Read commands from stdin and execute them against the configured store until exit.",
		RunE: func(c *cobra.Command, args []string) error {
			fs, err := openFS()
			if err != nil {
				return err
			}
			defer fs.Close()

			manager := cmd.NewManager(fs)
			if err := builtin.Register(manager); err != nil {
				return err
			}

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("grid> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}

				fields := strings.Fields(scanner.Text())
				if len(fields) == 0 {
					continue
				}

				switch fields[0] {
				case "exit", "quit":
					return nil
				case "help":
					printHelp(manager)
					continue
				}

				if _, err := manager.Execute(c.Context(), os.Stdout, fields...); err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
			}
		},
	}

	return shellCmd
}

func printHelp(manager *cmd.Manager) {
	for _, command := range manager.List() {
		fmt.Printf("  %-24s %s\n", command.Usage(), command.Description())
	}
	fmt.Printf("  %-24s %s\n", "help", "Show this list")
	fmt.Printf("  %-24s %s\n", "exit", "Leave the shell")
}

func newDriversCommand() *cobra.Command {
	driversCmd := &cobra.Command{
		Use:   "drivers",
		Short: "List the registered store drivers",
		Run: func(c *cobra.Command, args []string) {
			for _, name := range store.Drivers() {
				fmt.Println(name)
			}
		},
	}

	return driversCmd
}
