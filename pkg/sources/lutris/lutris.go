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


// Package lutris imports installed games from the Lutris game database.
package lutris

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"path/filepath"
	"strconv"

	"github.com/ZaparooProject/zaparoo-importer/pkg/config"
	"github.com/ZaparooProject/zaparoo-importer/pkg/games"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/ids"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/shared"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/launchcmd"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/location"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/snapshot"
	"github.com/adrg/xdg"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	SourceID   = "lutris"
	SourceName = "Lutris"

	// DatabaseFile is the logical and file name of the Lutris game database.
	DatabaseFile = "pga.db"
	// CoverArtDir holds cover images named <slug>.jpg.
	CoverArtDir = "coverart"

	steamRunner = "steam"
	urlPrefix   = "lutris:rungameid/"
)

const gamesQuery = `
	SELECT id, name, slug, runner, hidden
	FROM games
	WHERE
		name IS NOT NULL
		AND slug IS NOT NULL
		AND configPath IS NOT NULL
		AND installed
		AND (runner IS NOT 'steam' OR ?)
`

// DataLocation returns the location of the Lutris database.
func DataLocation(override string) *location.Location {
	return &location.Location{
		Name:     SourceID,
		Override: override,
		Candidates: []string{
			filepath.Join(shared.FlatpakAppPath(shared.FlatpakLutrisID), "data", "lutris"),
			filepath.Join(xdg.DataHome, "lutris"),
			"~/.local/share/lutris",
		},
		Paths: map[string]location.Path{
			DatabaseFile: location.File(DatabaseFile),
		},
	}
}

// CacheLocation returns the location of the Lutris artwork cache. It is
// resolved independently of the database, which may live elsewhere.
func CacheLocation(override string) *location.Location {
	return &location.Location{
		Name:     SourceID + "-cache",
		Override: override,
		Candidates: []string{
			filepath.Join(shared.FlatpakAppPath(shared.FlatpakLutrisID), "cache", "lutris"),
			filepath.Join(xdg.CacheHome, "lutris"),
			"~/.cache/lutris",
		},
		Paths: map[string]location.Path{
			CoverArtDir: location.Dir(CoverArtDir),
		},
	}
}

// Source imports installed Lutris games. Games using the Steam runner are
// skipped unless ImportSteam is set, since the Steam source finds them.
type Source struct {
	Data        *location.Location
	Cache       *location.Location
	Clock       clockwork.Clock
	ImportSteam bool
}

// New returns a Lutris source using the location overrides from cfg.
func New(cfg *config.Instance) *Source {
	return &Source{
		Data:        DataLocation(cfg.LocationOverride(config.LocationLutris)),
		Cache:       CacheLocation(cfg.LocationOverride(config.LocationLutrisCache)),
		Clock:       clockwork.NewRealClock(),
		ImportSteam: cfg.LutrisImportSteam(),
	}
}

func (*Source) ID() string {
	return SourceID
}

func (*Source) Name() string {
	return SourceName
}

func (*Source) AvailableOn() []string {
	return []string{ids.Linux}
}

// GameID formats the ID of a Lutris game. The internal ID is included
// because Lutris allows the same slug for several runners.
func GameID(slug string, id int64) string {
	return SourceID + "_" + slug + "_" + strconv.FormatInt(id, 10)
}

// Executable returns the command which launches a game through Lutris.
// Lutris only runs on Linux, so the URL always goes to xdg-open.
func Executable(slug string) string {
	return launchcmd.OpenURL(ids.Linux, urlPrefix+slug)
}

func (s *Source) Games(ctx context.Context) iter.Seq2[games.Result, error] {
	return sources.SinglePass(func(yield func(games.Result, error) bool) {
		added := sources.AddedNow(s.Clock)

		if s.Data == nil {
			return
		}
		dbPath, err := s.Data.MustPath(DatabaseFile)
		if err != nil {
			log.Debug().Msg("lutris database not found, skipping")
			return
		}

		coverDir := ""
		if s.Cache != nil {
			if p, err := s.Cache.MustPath(CoverArtDir); err == nil {
				coverDir = p
			}
		}

		db, err := snapshot.Open(ctx, dbPath)
		if err != nil {
			yield(games.Result{}, fmt.Errorf("failed to open lutris database: %w", err))
			return
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("failed to clean up lutris database snapshot")
			}
		}()

		for res, err := range QueryGames(ctx, db.DB, s.ImportSteam, coverDir, added) {
			if !yield(res, err) {
				return
			}
		}
	})
}

// QueryGames reads installed games from an open Lutris database. Rows
// which can't be scanned are skipped. A failed query or iteration error is
// yielded once and ends the sequence.
func QueryGames(
	ctx context.Context,
	db *sql.DB,
	importSteam bool,
	coverDir string,
	added int64,
) iter.Seq2[games.Result, error] {
	return func(yield func(games.Result, error) bool) {
		rows, err := db.QueryContext(ctx, gamesQuery, importSteam)
		if err != nil {
			yield(games.Result{}, fmt.Errorf("failed to query lutris games: %w", err))
			return
		}
		defer func() {
			if closeErr := rows.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("failed to close lutris query rows")
			}
		}()

		count := 0
		for rows.Next() {
			res, err := scanGame(rows, coverDir, added)
			if err != nil {
				log.Warn().Err(err).Msg("failed to scan lutris game row")
				continue
			}
			count++
			if !yield(res, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(games.Result{}, fmt.Errorf("error iterating lutris game rows: %w", err))
			return
		}

		log.Debug().Msgf("found %d lutris games", count)
	}
}

func scanGame(rows *sql.Rows, coverDir string, added int64) (games.Result, error) {
	var (
		id     int64
		name   string
		slug   string
		runner sql.NullString
		hidden sql.NullInt64
	)
	if err := rows.Scan(&id, &name, &slug, &runner, &hidden); err != nil {
		return games.Result{}, fmt.Errorf("failed to scan row: %w", err)
	}

	src := SourceID
	if runner.Valid && runner.String != "" {
		src += "_" + runner.String
	}

	game := games.Game{
		Version:    games.SpecVersion,
		Source:     src,
		GameID:     GameID(slug, id),
		Name:       name,
		Executable: Executable(slug),
		Added:      added,
		Hidden:     hidden.Valid && hidden.Int64 != 0,
	}

	if coverDir == "" {
		return games.Bare(game), nil
	}
	return games.WithImage(game, filepath.Join(coverDir, slug+".jpg")), nil
}
