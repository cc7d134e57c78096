package cmd_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/mwantia/gridfs/cmd"
)

// echoCommand is a minimal command used to exercise the manager.
type echoCommand struct {
	name string
}

func (e *echoCommand) Name() string {
	return e.name
}

func (e *echoCommand) Description() string {
	return "echoes its arguments"
}

func (e *echoCommand) Usage() string {
	return e.name + " [-u] [args...]"
}

func (e *echoCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	for _, arg := range args.Args {
		if _, err := fmt.Fprintln(writer, arg); err != nil {
			return 1, err
		}
	}

	if args.Bool("fail") {
		return 2, fmt.Errorf("forced failure")
	}

	return 0, nil
}

func (e *echoCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"fail": {Name: "fail", Type: "bool"},
		},
	}
}

// TestManager_Register verifies registration rules.
func TestManager_Register(t *testing.T) {
	manager := cmd.NewManager(nil)

	if err := manager.Register(&echoCommand{name: "echo"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := manager.Register(&echoCommand{name: "echo"}); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
	if err := manager.Register(&echoCommand{name: ""}); err == nil {
		t.Error("Expected empty name to fail")
	}
	if err := manager.Register(nil); err == nil {
		t.Error("Expected nil command to fail")
	}

	if _, err := manager.Get("echo"); err != nil {
		t.Errorf("Get failed: %v", err)
	}
	if _, err := manager.Get("missing"); err == nil {
		t.Error("Expected missing command error")
	}

	if err := manager.Unregister("echo"); err != nil {
		t.Errorf("Unregister failed: %v", err)
	}
	if err := manager.Unregister("echo"); err == nil {
		t.Error("Expected unregistering twice to fail")
	}
}

// TestManager_List verifies name-sorted listing.
func TestManager_List(t *testing.T) {
	manager := cmd.NewManager(nil)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := manager.Register(&echoCommand{name: name}); err != nil {
			t.Fatalf("Register %s failed: %v", name, err)
		}
	}

	list := manager.List()
	if len(list) != 3 {
		t.Fatalf("Expected 3 commands, got %d", len(list))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if list[i].Name() != want {
			t.Errorf("Expected %q at %d, got %q", want, i, list[i].Name())
		}
	}
}

// TestManager_Execute verifies dispatch, output and exit codes.
func TestManager_Execute(t *testing.T) {
	manager := cmd.NewManager(nil)
	if err := manager.Register(&echoCommand{name: "echo"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	ctx := t.Context()

	var out bytes.Buffer
	code, err := manager.Execute(ctx, &out, "echo", "one", "two")
	if err != nil || code != 0 {
		t.Fatalf("Execute failed: code=%d err=%v", code, err)
	}
	if out.String() != "one\ntwo\n" {
		t.Errorf("Expected echoed output, got %q", out.String())
	}

	code, err = manager.Execute(ctx, io.Discard, "echo", "--fail")
	if err == nil || code != 2 {
		t.Errorf("Expected forced failure with code 2, got code=%d err=%v", code, err)
	}

	if _, err := manager.Execute(ctx, io.Discard, "missing"); err == nil {
		t.Error("Expected unknown command error")
	}
	if _, err := manager.Execute(ctx, io.Discard); err == nil {
		t.Error("Expected empty command line error")
	}
	if _, err := manager.Execute(ctx, io.Discard, "echo", "--nope"); err == nil {
		t.Error("Expected parse error for unknown flag")
	}
}
