// Zaparoo Importer
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Importer.
//
// Zaparoo Importer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Importer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Importer.  If not, see <http://www.gnu.org/licenses/>.

// Package snapshot reads SQLite databases owned by other applications. The
// database and its journal files are copied to a private temporary directory
// first, so the owning process never sees our locks and a live writer can't
// hand us a torn read.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ZaparooProject/zaparoo-importer/pkg/helpers"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const tempPattern = "zaparoo-importer-db-*"

// sidecarSuffixes are files SQLite keeps next to a database which belong to
// the same logical transaction state.
var sidecarSuffixes = []string{"-wal", "-shm", "-journal"}

// Snapshot is a private copy of a database. Close removes it.
type Snapshot struct {
	// Dir is the temporary directory holding the copy.
	Dir string
	// Path is the copied database file.
	Path      string
	closeOnce sync.Once
	closeErr  error
}

// Copy snapshots the database at dbPath and any sidecar files into a new
// temporary directory. If copying fails, everything created so far is
// removed before the error is returned.
func Copy(dbPath string) (*Snapshot, error) {
	tmpDir, err := os.MkdirTemp("", tempPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	snap := &Snapshot{
		Dir:  tmpDir,
		Path: filepath.Join(tmpDir, filepath.Base(dbPath)),
	}

	if err := helpers.CopyFile(dbPath, snap.Path); err != nil {
		_ = snap.Close()
		return nil, fmt.Errorf("failed to snapshot database: %w", err)
	}

	for _, suffix := range sidecarSuffixes {
		src := dbPath + suffix
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := helpers.CopyFile(src, snap.Path+suffix); err != nil {
			_ = snap.Close()
			return nil, fmt.Errorf("failed to snapshot database %s file: %w", suffix, err)
		}
	}

	log.Debug().Str("src", dbPath).Str("dst", snap.Path).Msg("created database snapshot")
	return snap, nil
}

// Close removes the snapshot directory and its contents. It's safe to call
// more than once. Removal is best effort: failures are logged and returned,
// but callers generally have nothing useful to do with them.
func (s *Snapshot) Close() error {
	s.closeOnce.Do(func() {
		if err := os.RemoveAll(s.Dir); err != nil {
			log.Warn().Err(err).Str("dir", s.Dir).Msg("failed to remove database snapshot")
			s.closeErr = fmt.Errorf("failed to remove snapshot: %w", err)
		}
	})
	return s.closeErr
}

// DB is an open handle on a snapshot. Closing it closes the handle and then
// removes the snapshot, whatever the result of the first step.
type DB struct {
	*sql.DB
	snap *Snapshot
}

// Open snapshots dbPath and opens the copy.
func Open(ctx context.Context, dbPath string) (*DB, error) {
	snap, err := Copy(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", snap.Path)
	if err != nil {
		_ = snap.Close()
		return nil, fmt.Errorf("failed to open database snapshot: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = snap.Close()
		return nil, fmt.Errorf("failed to open database snapshot: %w", err)
	}

	return &DB{DB: db, snap: snap}, nil
}

// Snapshot returns the snapshot backing this handle.
func (d *DB) Snapshot() *Snapshot {
	return d.snap
}

func (d *DB) Close() error {
	dbErr := d.DB.Close()
	if dbErr != nil {
		log.Warn().Err(dbErr).Msg("failed to close database snapshot")
		dbErr = fmt.Errorf("failed to close database snapshot: %w", dbErr)
	}
	return errors.Join(dbErr, d.snap.Close())
}
