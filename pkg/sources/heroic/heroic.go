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


// Package heroic imports installed Epic and GOG games from the Heroic
// Games Launcher library cache.
package heroic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
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
	SourceID   = "heroic"
	SourceName = "Heroic"

	storeCache  = "store_cache"
	imagesCache = "images-cache"
	urlPrefix   = "heroic://launch/"
)

// Library is one store's library file inside store_cache.
type Library struct {
	// Sub is the sub-source suffix, e.g. "legendary".
	Sub string
	// File is the JSON file name.
	File string
	// Key is the top-level JSON key holding the game list.
	Key string
}

// Libraries are read in this order.
var Libraries = []Library{
	{Sub: "legendary", File: "legendary_library.json", Key: "library"},
	{Sub: "gog", File: "gog_library.json", Key: "games"},
}

// gameInfo represents a game entry in Heroic's library JSON files
type gameInfo struct {
	AppName     string `json:"app_name"`     //nolint:tagliatelle // External JSON format from Heroic
	Title       string `json:"title"`
	ArtSquare   string `json:"art_square"`   //nolint:tagliatelle // External JSON format from Heroic
	IsInstalled bool   `json:"is_installed"` //nolint:tagliatelle // External JSON format from Heroic
}

// Candidates returns the usual Heroic configuration directories for an OS.
// Heroic is an Electron app, so it keeps its files in the roaming app data
// directory on Windows rather than the local one xdg reports.
func Candidates(goos string) []string {
	switch goos {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return []string{filepath.Join(appData, "heroic")}
		}
		return []string{"~/AppData/Roaming/heroic"}
	case "darwin":
		return []string{"~/Library/Application Support/heroic"}
	default:
		return []string{
			filepath.Join(shared.FlatpakAppPath(shared.FlatpakHeroicID), "config", "heroic"),
			filepath.Join(xdg.ConfigHome, "heroic"),
		}
	}
}

// ConfigLocation returns the location of Heroic's configuration directory.
func ConfigLocation(fs afero.Fs, override string) *location.Location {
	return &location.Location{
		Fs:         fs,
		Name:       SourceID,
		Override:   override,
		Candidates: Candidates(runtime.GOOS),
		Paths: map[string]location.Path{
			storeCache: location.Dir(storeCache),
		},
	}
}

// Source imports installed Heroic games.
type Source struct {
	Fs     afero.Fs
	Config *location.Location
	Clock  clockwork.Clock
	// Platform selects the URL opener used in executables. Empty means
	// the current platform.
	Platform string
}

// New returns a Heroic source using the location override from cfg.
func New(cfg *config.Instance) *Source {
	fs := afero.NewOsFs()
	return &Source{
		Fs:     fs,
		Config:   ConfigLocation(fs, cfg.LocationOverride(config.LocationHeroic)),
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
	return []string{ids.Linux, ids.Windows, ids.Mac}
}

// GameID formats the ID of a Heroic game.
func GameID(sub, appName string) string {
	return SourceID + "_" + sub + "_" + appName
}

// Executable returns the command which launches a game through Heroic on
// the given platform.
func Executable(platformID, appName string) string {
	return launchcmd.OpenURL(platformID, urlPrefix+appName)
}

// ImageName is the file name Heroic caches a remote image under.
func ImageName(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
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

		if s.Config == nil {
			return
		}
		res, ok := s.Config.Resolve()
		if !ok {
			log.Debug().Msg("heroic not found, skipping")
			return
		}

		imagesDir := filepath.Join(res.Root, imagesCache)
		if ok, err := afero.DirExists(s.fs(), imagesDir); err != nil || !ok {
			imagesDir = ""
		}

		for _, lib := range Libraries {
			entries, err := s.readLibrary(filepath.Join(res.Path(storeCache), lib.File), lib.Key)
			if err != nil {
				log.Warn().Err(err).Str("library", lib.Sub).Msg("skipping heroic library")
				continue
			}

			count := 0
			for _, e := range entries {
				if err := ctx.Err(); err != nil {
					yield(games.Result{}, fmt.Errorf("heroic scan cancelled: %w", err))
					return
				}
				if !e.IsInstalled {
					continue
				}
				if e.AppName == "" || e.Title == "" {
					log.Debug().Msgf("heroic game missing app_name or title: %q", e.Title)
					continue
				}
				count++
				if !yield(s.result(lib.Sub, e, imagesDir, added), nil) {
					return
				}
			}
			log.Debug().Msgf("found %d heroic %s games", count, lib.Sub)
		}
	})
}

// readLibrary parses a library JSON file. A missing file is an empty
// library, not an error.
func (s *Source) readLibrary(path, key string) ([]gameInfo, error) {
	if ok, err := afero.Exists(s.fs(), path); err != nil || !ok {
		log.Debug().Msgf("heroic library file not found: %s", path)
		return nil, nil
	}

	data, err := afero.ReadFile(s.fs(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to read heroic library file: %w", err)
	}

	// structure is { "library": [...] } or { "games": [...] }
	var libraryData map[string]json.RawMessage
	if err := json.Unmarshal(data, &libraryData); err != nil {
		return nil, fmt.Errorf("failed to parse heroic library JSON: %w", err)
	}

	raw, ok := libraryData[key]
	if !ok {
		log.Debug().Msgf("heroic library file missing expected key: %s", key)
		return nil, nil
	}

	var entries []gameInfo
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse heroic library entries: %w", err)
	}
	return entries, nil
}

func (s *Source) result(sub string, e gameInfo, imagesDir string, added int64) games.Result {
	game := games.Game{
		Version:    games.SpecVersion,
		Source:     SourceID + "_" + sub,
		GameID:     GameID(sub, e.AppName),
		Name:       e.Title,
		Executable: Executable(s.platform(), e.AppName),
		Added:      added,
	}
	if imagesDir == "" || e.ArtSquare == "" {
		return games.Bare(game)
	}
	return games.WithImage(game, filepath.Join(imagesDir, ImageName(e.ArtSquare)))
}
