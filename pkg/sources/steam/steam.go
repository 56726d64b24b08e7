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


// Package steam imports installed games from Steam libraries.
package steam

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ZaparooProject/zaparoo-importer/pkg/config"
	"github.com/ZaparooProject/zaparoo-importer/pkg/games"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/ids"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/shared"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/launchcmd"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/location"
	"github.com/adrg/xdg"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SourceID   = "steam"
	SourceName = "Steam"

	libraryFolders = "libraryfolders"
	libraryCache   = "appcache/librarycache"
	urlPrefix      = "steam://rungameid/"
)

// Candidates returns the usual Steam root directories for an OS.
func Candidates(goos string) []string {
	switch goos {
	case "windows":
		var dirs []string
		if pf := os.Getenv("ProgramFiles(x86)"); pf != "" {
			dirs = append(dirs, filepath.Join(pf, "Steam"))
		}
		return append(dirs, `C:\Program Files (x86)\Steam`)
	case "darwin":
		return []string{"~/Library/Application Support/Steam"}
	default:
		return []string{
			filepath.Join(shared.FlatpakAppPath(shared.FlatpakSteamID), "data", "Steam"),
			"~/.steam/steam",
			filepath.Join(xdg.DataHome, "Steam"),
		}
	}
}

// RootLocation returns the location of the Steam root directory.
func RootLocation(fs afero.Fs, override string) *location.Location {
	return &location.Location{
		Fs:         fs,
		Name:       SourceID,
		Override:   override,
		Candidates: Candidates(runtime.GOOS),
		Paths: map[string]location.Path{
			libraryFolders: location.File("steamapps/libraryfolders.vdf"),
		},
	}
}

// Source imports installed Steam apps, skipping Steam's own runtimes and
// compatibility tools.
type Source struct {
	Fs    afero.Fs
	Root  *location.Location
	Clock clockwork.Clock
	// Platform selects the URL opener used in executables. Empty means
	// the current platform.
	Platform string
}

// New returns a Steam source using the location override from cfg.
func New(cfg *config.Instance) *Source {
	fs := afero.NewOsFs()
	return &Source{
		Fs:    fs,
		Root:     RootLocation(fs, cfg.LocationOverride(config.LocationSteam)),
		Clock:    clockwork.NewRealClock(),
		Platform: ids.Current(),
	}
}

func (*Source) ID() string {
	return SourceID
}

func (*Source) Name() string {
	return SourceName
}

func (*Source) AvailableOn() []string {
	return []string{ids.Linux, ids.Mac, ids.Windows}
}

// GameID formats the ID of a Steam app.
func GameID(appID string) string {
	return SourceID + "_" + appID
}

// Executable returns the command which launches an app through Steam on
// the given platform.
func Executable(platformID, appID string) string {
	return launchcmd.OpenURL(platformID, urlPrefix+appID)
}

func (s *Source) platform() string {
	if s.Platform == "" {
		return ids.Current()
	}
	return s.Platform
}

func (s *Source) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}

func (s *Source) Games(ctx context.Context) iter.Seq2[games.Result, error] {
	return sources.SinglePass(func(yield func(games.Result, error) bool) {
		added := sources.AddedNow(s.Clock)

		if s.Root == nil {
			return
		}
		res, ok := s.Root.Resolve()
		if !ok {
			log.Debug().Msg("steam not found, skipping")
			return
		}

		cacheDir := filepath.Join(res.Root, filepath.FromSlash(libraryCache))
		if ok, err := afero.DirExists(s.fs(), cacheDir); err != nil || !ok {
			cacheDir = ""
		}

		seen := make(map[string]bool)
		for _, lib := range LibraryDirs(s.fs(), res.Root) {
			for _, mp := range ManifestPaths(s.fs(), lib) {
				if err := ctx.Err(); err != nil {
					yield(games.Result{}, fmt.Errorf("steam scan cancelled: %w", err))
					return
				}

				m, err := ReadManifest(s.fs(), mp)
				if err != nil {
					log.Warn().Err(err).Str("path", mp).Msg("skipping steam manifest")
					continue
				}
				if !m.Installed() || m.IsTool() || seen[m.AppID] {
					continue
				}
				seen[m.AppID] = true

				if !yield(s.result(m, cacheDir, added), nil) {
					return
				}
			}
		}
	})
}

func (s *Source) result(m Manifest, cacheDir string, added int64) games.Result {
	game := games.Game{
		Version:    games.SpecVersion,
		Source:     SourceID,
		GameID:     GameID(m.AppID),
		Name:       m.Name,
		Executable: Executable(s.platform(), m.AppID),
		Added:      added,
	}
	if cacheDir == "" {
		return games.Bare(game)
	}
	return games.WithImage(game, s.coverPath(cacheDir, m.AppID))
}

// coverPath prefers the per-app directory layout of newer Steam clients
// and falls back to the flat layout.
func (s *Source) coverPath(cacheDir, appID string) string {
	nested := filepath.Join(cacheDir, appID, "library_600x900.jpg")
	if ok, err := afero.Exists(s.fs(), nested); err == nil && ok {
		return nested
	}
	return filepath.Join(cacheDir, appID+"_library_600x900.jpg")
}
