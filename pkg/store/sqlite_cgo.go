//go:build cgo

package store

// Registers mattn/go-sqlite3 under the "sqlite3" driver name for cgo builds.
// Pure-Go builds only have modernc.org/sqlite ("sqlite").

import (
	_ "github.com/mattn/go-sqlite3"
)
