//go:build sqlite_cgo && !purego

package storage

// This file is compiled with the sqlite_cgo tag. It links the C SQLite
// library through cgo; FTS5 must be enabled with the sqlite_fts5 tag.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_cgo,sqlite_fts5" ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
