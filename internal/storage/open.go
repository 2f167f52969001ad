package storage

import (
	"fmt"
	"log"
	"strings"
)

// Open builds the Store selected by driver: "file" (default), "sqlite" or "postgres".
func Open(driver, dsn, dataDir string) (Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case "", "file":
		log.Printf("💾 Using file store in %s", dataDir)
		return NewFileStore(dataDir)
	case "sqlite", "postgres":
		log.Printf("💾 Using %s store", driver)
		return NewGormStore(driver, dsn)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
