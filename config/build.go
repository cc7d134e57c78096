package config

import (
	"github.com/mwantia/gridfs"
	"github.com/mwantia/gridfs/log"
	"github.com/mwantia/gridfs/store"
)

// Logger builds a logger from the logging section.
func (c *Config) Logger(name string) *log.Logger {
	opts := []log.Option{
		log.WithLevel(log.Parse(c.Logging.Level)),
	}

	if c.Logging.JSON {
		opts = append(opts, log.WithJSON())
	}
	if c.Logging.File != "" {
		opts = append(opts, log.WithFile(c.Logging.File))
	}

	return log.New(name, opts...)
}

// StoreConfig converts the connection section into the driver config.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Host:       c.Connection.Host,
		Port:       c.Connection.Port,
		Zone:       c.Connection.Zone,
		Username:   c.Connection.Username,
		Credential: c.Connection.Credential,
		Options:    c.Connection.Options,
	}
}

// Build assembles a filesystem from the configuration. The named
// driver must be registered, which usually means importing its
// package for side effects.
func Build(cfg *Config) (*gridfs.FileSystem, error) {
	driver, err := store.Lookup(cfg.Connection.Driver)
	if err != nil {
		return nil, err
	}

	opts := []gridfs.Option{
		gridfs.WithLogger(cfg.Logger("gridfs")),
	}

	if cfg.Adapter.Root != "" {
		opts = append(opts, gridfs.WithRoot(cfg.Adapter.Root))
	}
	if cfg.Adapter.PoolSize > 0 {
		opts = append(opts, gridfs.WithPoolSize(cfg.Adapter.PoolSize))
	}
	if cfg.Adapter.ChunkSize > 0 {
		opts = append(opts, gridfs.WithChunkSize(cfg.Adapter.ChunkSize))
	}
	if cfg.Adapter.Timeout > 0 {
		opts = append(opts, gridfs.WithTimeout(cfg.Adapter.Timeout))
	}
	if len(cfg.Adapter.Protected) > 0 {
		opts = append(opts, gridfs.WithProtectedNames(cfg.Adapter.Protected...))
	}

	return gridfs.New(driver, cfg.StoreConfig(), opts...)
}
