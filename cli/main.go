package main

import (
	// Register every bundled store driver.
	_ "github.com/mwantia/gridfs/store/badger"
	_ "github.com/mwantia/gridfs/store/consul"
	_ "github.com/mwantia/gridfs/store/memory"
	_ "github.com/mwantia/gridfs/store/postgres"
	_ "github.com/mwantia/gridfs/store/s3"
	_ "github.com/mwantia/gridfs/store/sqlite"
)

// Overridden at build time through -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	Execute()
}
