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

// Package games defines the canonical record produced by every import source.
package games

import "errors"

// SpecVersion is the record format version written into every game.
const SpecVersion = "1.5"

// ErrConflictingData is returned when additional data carries both an icon
// and a cover image.
var ErrConflictingData = errors.New("additional data has both icon and image paths")

// Game is a single discovered game, normalised from an external source.
// Records are rebuilt on every import run and carry no identity beyond the
// (Source, GameID) pair.
type Game struct {
	// Version is the record format version, always SpecVersion.
	Version string `json:"version" toml:"version" validate:"required"`
	// Source is the originating source ID, plus a runner suffix for
	// launchers which host several runners (e.g. "lutris_wine").
	Source string `json:"source" toml:"source" validate:"required"`
	// GameID is unique across all sources because it's always prefixed by
	// the source ID.
	GameID string `json:"game_id" toml:"game_id" validate:"required"`
	// Name is the display name.
	Name string `json:"name" toml:"name" validate:"required"`
	// Executable is a shell-safe command line which launches the game.
	Executable string `json:"executable" toml:"executable" validate:"required"`
	// Added is the Unix timestamp of the import pass that found the game.
	Added  int64 `json:"added" toml:"added"`
	Hidden bool  `json:"hidden" toml:"hidden"`
}

// AdditionalData is artwork hinting which accompanies a record but isn't
// persisted with it. At most one field is set.
type AdditionalData struct {
	LocalIconPath  string `json:"local_icon_path,omitempty"`
	LocalImagePath string `json:"local_image_path,omitempty"`
}

// Valid checks that at most one artwork path is set.
func (d *AdditionalData) Valid() error {
	if d.LocalIconPath != "" && d.LocalImagePath != "" {
		return ErrConflictingData
	}
	return nil
}

// Result is one item produced by a source. A nil Data is a bare record.
type Result struct {
	Data *AdditionalData
	Game Game
}

// Bare wraps a game with no additional data.
func Bare(g Game) Result {
	return Result{Game: g}
}

// WithIcon wraps a game with a local icon path.
func WithIcon(g Game, path string) Result {
	return Result{Game: g, Data: &AdditionalData{LocalIconPath: path}}
}

// WithImage wraps a game with a local cover image path.
func WithImage(g Game, path string) Result {
	return Result{Game: g, Data: &AdditionalData{LocalImagePath: path}}
}
