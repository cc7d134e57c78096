package cmd

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string
}

// Bool returns the flag value as a bool, false when absent.
func (ca *CommandArgs) Bool(name string) bool {
	v, ok := ca.Flags[name].(bool)
	return ok && v
}

// String returns the flag value as a string, empty when absent.
func (ca *CommandArgs) String(name string) string {
	v, _ := ca.Flags[name].(string)
	return v
}

// Int returns the flag value as an int64, zero when absent.
func (ca *CommandArgs) Int(name string) int64 {
	v, _ := ca.Flags[name].(int64)
	return v
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "recursive"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "r")
	Type        string `json:"type"`              // "string", "bool", "int"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
}
