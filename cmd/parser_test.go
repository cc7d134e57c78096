package cmd_test

import (
	"strings"
	"testing"

	"github.com/mwantia/gridfs/cmd"
)

func newTestFlagSet() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"recursive": {Name: "recursive", Short: "r", Type: "bool"},
			"force":     {Name: "force", Short: "f", Type: "bool"},
			"output":    {Name: "output", Short: "o", Type: "string", Default: "text"},
			"depth":     {Name: "depth", Short: "d", Type: "int"},
		},
	}
}

// TestParser_Flags verifies long, short and grouped flag parsing.
func TestParser_Flags(t *testing.T) {
	parser := cmd.NewParser(newTestFlagSet())

	t.Run("Defaults", func(tst *testing.T) {
		args, err := parser.Parse([]string{"/path"})
		if err != nil {
			tst.Fatalf("Parse failed: %v", err)
		}

		if args.Bool("recursive") {
			tst.Error("Expected recursive to default to false")
		}
		if args.String("output") != "text" {
			tst.Errorf("Expected default output 'text', got %q", args.String("output"))
		}
		if len(args.Args) != 1 || args.Args[0] != "/path" {
			tst.Errorf("Expected positional args, got %v", args.Args)
		}
	})

	t.Run("LongFlags", func(tst *testing.T) {
		args, err := parser.Parse([]string{"--recursive", "--output=json", "--depth", "3", "/path"})
		if err != nil {
			tst.Fatalf("Parse failed: %v", err)
		}

		if !args.Bool("recursive") {
			tst.Error("Expected recursive to be set")
		}
		if args.String("output") != "json" {
			tst.Errorf("Expected output 'json', got %q", args.String("output"))
		}
		if args.Int("depth") != 3 {
			tst.Errorf("Expected depth 3, got %d", args.Int("depth"))
		}
		if len(args.Args) != 1 || args.Args[0] != "/path" {
			tst.Errorf("Expected positional args, got %v", args.Args)
		}
	})

	t.Run("ShortFlags", func(tst *testing.T) {
		args, err := parser.Parse([]string{"-r", "-o", "json", "/path"})
		if err != nil {
			tst.Fatalf("Parse failed: %v", err)
		}

		if !args.Bool("recursive") || args.String("output") != "json" {
			tst.Errorf("Expected short flags parsed, got %v", args.Flags)
		}
	})

	t.Run("GroupedShorts", func(tst *testing.T) {
		args, err := parser.Parse([]string{"-rf", "/path"})
		if err != nil {
			tst.Fatalf("Parse failed: %v", err)
		}

		if !args.Bool("recursive") || !args.Bool("force") {
			tst.Errorf("Expected both booleans set, got %v", args.Flags)
		}
	})

	t.Run("Terminator", func(tst *testing.T) {
		args, err := parser.Parse([]string{"-r", "--", "--not-a-flag", "-x"})
		if err != nil {
			tst.Fatalf("Parse failed: %v", err)
		}

		if !args.Bool("recursive") {
			tst.Error("Expected recursive before terminator")
		}
		if len(args.Args) != 2 || args.Args[0] != "--not-a-flag" {
			tst.Errorf("Expected literal args after --, got %v", args.Args)
		}
	})
}

// TestParser_Errors verifies rejection of malformed flag input.
func TestParser_Errors(t *testing.T) {
	parser := cmd.NewParser(newTestFlagSet())

	cases := map[string][]string{
		"unknown-long":   {"--verbose"},
		"unknown-short":  {"-x"},
		"missing-value":  {"--output"},
		"bad-int":        {"--depth", "three"},
		"bad-int-eq":     {"--depth=three"},
		"short-no-value": {"-o"},
	}

	for name, raw := range cases {
		t.Run(name, func(tst *testing.T) {
			if _, err := parser.Parse(raw); err == nil {
				tst.Errorf("Expected parse error for %v", raw)
			}
		})
	}
}

// TestParser_Required verifies required flag enforcement.
func TestParser_Required(t *testing.T) {
	parser := cmd.NewParser(&cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"target": {Name: "target", Short: "t", Type: "string", Required: true},
		},
	})

	if _, err := parser.Parse([]string{"/path"}); err == nil || !strings.Contains(err.Error(), "required") {
		t.Errorf("Expected required flag error, got %v", err)
	}

	args, err := parser.Parse([]string{"--target", "x"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if args.String("target") != "x" {
		t.Errorf("Expected target 'x', got %q", args.String("target"))
	}
}

// TestParser_NilFlagSet verifies that flagless commands still parse
// positionals.
func TestParser_NilFlagSet(t *testing.T) {
	parser := cmd.NewParser(nil)

	args, err := parser.Parse([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(args.Args) != 2 {
		t.Errorf("Expected 2 positionals, got %v", args.Args)
	}

	if _, err := parser.Parse([]string{"--anything"}); err == nil {
		t.Error("Expected unknown flag error with nil flag set")
	}
}
