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


// Package desktop imports games from freedesktop application menu entries.
package desktop

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-importer/pkg/config"
	"github.com/ZaparooProject/zaparoo-importer/pkg/games"
	"github.com/ZaparooProject/zaparoo-importer/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/ids"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/shared"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/icons"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/launchcmd"
	"github.com/adrg/xdg"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/crypto/sha3"
)

const (
	SourceID   = "desktop"
	SourceName = "Desktop"

	// IconSize is the pixel size icons are looked up at.
	IconSize = 512

	entrySection = "Desktop Entry"
	entryExt     = ".desktop"
	gameCategory = "Game"
	lutrisPrefix = "net.lutris."
)

// proxyMarkers identify entries which only launch a game through another
// source, so the game would be imported twice.
var proxyMarkers = []string{
	"steam://rungameid/",
	"heroic://launch/",
	"bottles-cli ",
}

var (
	errNoEntrySection = errors.New("missing desktop entry section")
	errMissingKey     = errors.New("missing required key")
)

// DefaultSearchPaths returns the data directories scanned for entries and
// icons, including the host's directories when running in a sandbox.
func DefaultSearchPaths() []string {
	paths := []string{
		xdg.DataHome,
		"/run/host/usr/local/share",
		"/run/host/usr/share",
		"/run/host/usr/share/pixmaps",
		"/usr/share/pixmaps",
	}
	return append(paths, xdg.DataDirs...)
}

// Source imports .desktop entries in the Game category.
type Source struct {
	Fs     afero.Fs
	Clock  clockwork.Clock
	Prober launchcmd.Prober
	// SearchPaths overrides DefaultSearchPaths when set.
	SearchPaths []string
	IconTheme   string
	// SandboxPrefix is the sandbox's own install prefix. Entries and icons
	// below it belong to this application and are ignored.
	SandboxPrefix string
}

// New returns a desktop source reading the icon theme from cfg.
func New(cfg *config.Instance, sandbox shared.Sandbox) *Source {
	return &Source{
		Fs:            afero.NewOsFs(),
		Clock:         clockwork.NewRealClock(),
		Prober:        launchcmd.Prober{Sandboxed: sandbox.IsSandboxed(config.AppID)},
		IconTheme:     cfg.IconTheme(),
		SandboxPrefix: shared.FlatpakSandboxPrefix,
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

// GameID returns the stable ID of the entry at path.
func GameID(path string) string {
	sum := sha3.Sum256([]byte(path))
	return SourceID + "_" + hex.EncodeToString(sum[:])
}

func (s *Source) Games(ctx context.Context) iter.Seq2[games.Result, error] {
	return sources.SinglePass(func(yield func(games.Result, error) bool) {
		added := sources.AddedNow(s.Clock)
		searchPaths := s.searchPaths()
		theme := s.iconTheme(searchPaths)
		launch := s.Prober.Probe(ctx)

		for _, sp := range searchPaths {
			dir := filepath.Join(sp, "applications")
			entries, err := afero.ReadDir(s.fs(), dir)
			if err != nil {
				continue
			}

			for _, fi := range entries {
				if err := ctx.Err(); err != nil {
					yield(games.Result{}, fmt.Errorf("desktop scan cancelled: %w", err))
					return
				}

				name := fi.Name()
				if fi.IsDir() || filepath.Ext(name) != entryExt {
					continue
				}
				if strings.HasPrefix(name, lutrisPrefix) {
					continue
				}

				path := filepath.Join(dir, name)
				res, ok := s.readEntry(path, added, launch, theme)
				if !ok {
					continue
				}
				if !yield(res, nil) {
					return
				}
			}
		}
	})
}

func (s *Source) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}

// searchPaths drops empty paths and anything inside our own sandbox.
func (s *Source) searchPaths() []string {
	candidates := s.SearchPaths
	if candidates == nil {
		candidates = DefaultSearchPaths()
	}

	out := make([]string, 0, len(candidates))
	for _, p := range candidates {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if s.SandboxPrefix != "" && helpers.PathHasPrefix(p, s.SandboxPrefix) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Source) iconTheme(searchPaths []string) *icons.Theme {
	theme := icons.New(s.fs(), s.IconTheme)
	for _, sp := range searchPaths {
		p := sp
		if filepath.Base(sp) != "pixmaps" {
			p = filepath.Join(sp, "icons")
		}
		if ok, err := afero.DirExists(s.fs(), p); err != nil || !ok {
			continue
		}
		theme.AddSearchPath(p)
	}
	return theme
}

type entry struct {
	name      string
	exec      string
	icon      string
	hasIcon   bool
	noDisplay bool
}

// readEntry returns false for anything which isn't an importable game.
func (s *Source) readEntry(
	path string,
	added int64,
	launch launchcmd.Command,
	theme *icons.Theme,
) (games.Result, bool) {
	e, err := s.parseEntry(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("skipping desktop entry")
		return games.Result{}, false
	}
	if e == nil || e.noDisplay {
		return games.Result{}, false
	}
	for _, m := range proxyMarkers {
		if strings.Contains(e.exec, m) {
			return games.Result{}, false
		}
	}

	game := games.Game{
		Version:    games.SpecVersion,
		Source:     SourceID,
		GameID:     GameID(path),
		Name:       e.name,
		Executable: launch.Executable(launch.Target(path, launchcmd.StemID(filepath.Base(path)))),
		Added:      added,
	}

	switch {
	case !e.hasIcon || e.icon == "":
		return games.Bare(game), true
	case strings.Contains(e.icon, "/"):
		return games.WithIcon(game, e.icon), true
	}

	if p, ok := theme.Lookup(e.icon, IconSize); ok {
		return games.WithIcon(game, p), true
	}
	return games.Bare(game), true
}

// parseEntry returns nil without error for valid entries which aren't games.
func (s *Source) parseEntry(path string) (*entry, error) {
	data, err := afero.ReadFile(s.fs(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}

	kf, err := parseKeyFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse entry: %w", err)
	}
	if _, ok := kf[entrySection]; !ok {
		return nil, errNoEntrySection
	}

	for _, k := range []string{"Categories", "Name", "Exec"} {
		if !kf.Has(entrySection, k) {
			return nil, fmt.Errorf("%w: %s", errMissingKey, k)
		}
	}

	if !isGame(kf.StringList(entrySection, "Categories")) {
		return nil, nil //nolint:nilnil // not a game, nothing to report
	}

	e := &entry{
		name:      strings.TrimSpace(kf.String(entrySection, "Name")),
		noDisplay: parseBool(kf.String(entrySection, "NoDisplay")),
	}
	if e.name == "" {
		return nil, fmt.Errorf("%w: Name", errMissingKey)
	}

	e.exec, _, _ = strings.Cut(kf.String(entrySection, "Exec"), " %")
	if kf.Has(entrySection, "Icon") {
		e.hasIcon = true
		e.icon = strings.TrimSpace(kf.String(entrySection, "Icon"))
	}
	return e, nil
}

func isGame(categories []string) bool {
	for _, c := range categories {
		if strings.TrimSpace(c) == gameCategory {
			return true
		}
	}
	return false
}

// parseBool follows desktop entry booleans. Anything malformed is false.
func parseBool(v string) bool {
	switch strings.TrimSpace(v) {
	case "true", "1":
		return true
	default:
		return false
	}
}
