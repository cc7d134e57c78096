package store

import (
	"fmt"
	"sort"
	"sync"
)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available for URL-based construction.
// Drivers call this from their package init; importing a driver
// package for side effects is enough to enable its scheme.
func Register(driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	name := driver.Name()
	if _, dup := drivers[name]; dup {
		panic(fmt.Sprintf("store: driver %q registered twice", name))
	}

	drivers[name] = driver
}

// Lookup returns the driver registered under name.
func Lookup(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()

	driver, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q", name)
	}

	return driver, nil
}

// Drivers lists the registered driver names in sorted order.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
