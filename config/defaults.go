package config

import "strings"

// ApplyDefaults fills unset fields after loading. Adapter knobs stay
// at zero so the filesystem applies its own defaults; only fields the
// adapter cannot default itself are set here.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)

	if cfg.Connection.Options == nil {
		cfg.Connection.Options = make(map[string]string)
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
}
