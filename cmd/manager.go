package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Manager handles command registration, parsing and execution against
// one API instance.
type Manager struct {
	mu   sync.RWMutex
	api  API
	cmds map[string]Command
}

func NewManager(api API) *Manager {
	return &Manager{
		api:  api,
		cmds: make(map[string]Command),
	}
}

// Register adds a command under its name.
func (cm *Manager) Register(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}

	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.cmds[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}

	cm.cmds[name] = cmd
	return nil
}

// Unregister removes a registered command.
func (cm *Manager) Unregister(name string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.cmds[name]; !exists {
		return fmt.Errorf("command not found: %s", name)
	}

	delete(cm.cmds, name)
	return nil
}

// Get returns a command by name.
func (cm *Manager) Get(name string) (Command, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	cmd, exists := cm.cmds[name]
	if !exists {
		return nil, fmt.Errorf("command not found: %s", name)
	}

	return cmd, nil
}

// List returns all registered commands sorted by name.
func (cm *Manager) List() []Command {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	names := make([]string, 0, len(cm.cmds))
	for name := range cm.cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	commands := make([]Command, 0, len(names))
	for _, name := range names {
		commands = append(commands, cm.cmds[name])
	}

	return commands
}

// Execute parses and executes one command line, writing command
// output to writer. The first argument selects the command.
func (cm *Manager) Execute(ctx context.Context, writer io.Writer, args ...string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("no command specified")
	}

	cmd, err := cm.Get(args[0])
	if err != nil {
		return 1, err
	}

	parsed, err := NewParser(cmd.GetFlags()).Parse(args[1:])
	if err != nil {
		return 1, fmt.Errorf("parse error: %w", err)
	}

	return cmd.Execute(ctx, cm.api, parsed, writer)
}
