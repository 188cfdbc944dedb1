package migration

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	sharedConfig "github.com/orris-inc/licensor/internal/shared/config"
)

//go:embed scripts
var scriptsFS embed.FS

// Script directories relative to the embedded root, and on disk relative to
// this package, for each tool.
const (
	gooseScriptsRoot   = "scripts/goose"
	migrateScriptsRoot = "scripts/migrate"
)

func scriptsDir(root, driver string) (string, error) {
	switch driver {
	case sharedConfig.DriverMySQL, sharedConfig.DriverPostgres, sharedConfig.DriverSQLite:
		return path.Join(root, driver), nil
	default:
		return "", fmt.Errorf("no migration scripts for driver %q", driver)
	}
}

// ScriptFiles lists the embedded scripts of one tool for a driver.
func ScriptFiles(tool, driver string) ([]string, error) {
	root := gooseScriptsRoot
	if tool == ToolMigrate {
		root = migrateScriptsRoot
	}
	dir, err := scriptsDir(root, driver)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(scriptsFS, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
