package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses raw arguments against a command's flag set.
type Parser struct {
	flagSet *CommandFlagSet
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	if flagSet == nil {
		flagSet = &CommandFlagSet{Flags: make(map[string]*CommandFlag)}
	}

	return &Parser{
		flagSet: flagSet,
	}
}

func (cp *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Flags: make(map[string]any),
		Raw:   raw,
	}

	for flagName, flag := range cp.flagSet.Flags {
		if flag.Default != nil {
			args.Flags[flagName] = flag.Default
		}
	}

	longToName := make(map[string]string)
	shortToName := make(map[string]string)
	for flagName, flag := range cp.flagSet.Flags {
		longToName[flag.Name] = flagName
		if flag.Short != "" {
			shortToName[flag.Short] = flagName
		}
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			args.Args = append(args.Args, raw[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "--") {
			key, value, hasValue := parseLongFlag(arg)
			flagName, exists := longToName[key]
			if !exists {
				return nil, fmt.Errorf("unknown flag: --%s", key)
			}

			flag := cp.flagSet.Flags[flagName]
			switch {
			case flag.Type == "bool":
				args.Flags[flagName] = true
			case hasValue:
				coerced, err := coerce(value, flag.Type)
				if err != nil {
					return nil, fmt.Errorf("flag --%s: %w", key, err)
				}
				args.Flags[flagName] = coerced
			case i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-"):
				coerced, err := coerce(raw[i+1], flag.Type)
				if err != nil {
					return nil, fmt.Errorf("flag --%s: %w", key, err)
				}
				args.Flags[flagName] = coerced
				i++
			default:
				return nil, fmt.Errorf("flag --%s requires a value", key)
			}
			continue
		}

		if strings.HasPrefix(arg, "-") && len(arg) > 1 && arg != "-" {
			for _, shortChar := range arg[1:] {
				shortStr := string(shortChar)
				flagName, exists := shortToName[shortStr]
				if !exists {
					return nil, fmt.Errorf("unknown flag: -%s", shortStr)
				}

				flag := cp.flagSet.Flags[flagName]
				if flag.Type != "bool" {
					// Grouped shorts take no values; only booleans can stack.
					if i+1 >= len(raw) || strings.HasPrefix(raw[i+1], "-") {
						return nil, fmt.Errorf("flag -%s requires a value", shortStr)
					}
					coerced, err := coerce(raw[i+1], flag.Type)
					if err != nil {
						return nil, fmt.Errorf("flag -%s: %w", shortStr, err)
					}
					args.Flags[flagName] = coerced
					i++
					continue
				}

				args.Flags[flagName] = true
			}
			continue
		}

		args.Args = append(args.Args, arg)
	}

	for flagName, flag := range cp.flagSet.Flags {
		if flag.Required {
			if _, ok := args.Flags[flagName]; !ok {
				if flag.Short != "" {
					return nil, fmt.Errorf("required flag: -%s / --%s", flag.Short, flag.Name)
				}
				return nil, fmt.Errorf("required flag: --%s", flag.Name)
			}
		}
	}

	return args, nil
}

func parseLongFlag(arg string) (key, value string, hasValue bool) {
	arg = strings.TrimPrefix(arg, "--")
	if idx := strings.Index(arg, "="); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

func coerce(value string, typeStr string) (any, error) {
	switch typeStr {
	case "int":
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", value)
		}
		return v, nil
	case "bool":
		return value == "true" || value == "1" || value == "yes", nil
	default:
		return value, nil
	}
}
