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


package steam

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// stateFullyInstalled is the StateFlags bit Steam sets once an app is
// completely downloaded.
const stateFullyInstalled = 4

var (
	errNoAppState = errors.New("appstate not found in manifest")
	errBadField   = errors.New("manifest field missing or invalid")
)

// toolNames mark apps which are compatibility tools or runtimes rather
// than games.
var toolNames = []string{
	"Proton",
	"Steamworks",
	"Steam Linux Runtime",
}

// Manifest holds the fields of an appmanifest_<id>.acf file.
type Manifest struct {
	AppID      string
	Name       string
	InstallDir string
	StateFlags int
}

// Installed reports whether the app is fully installed.
func (m Manifest) Installed() bool {
	return m.StateFlags&stateFullyInstalled != 0
}

// IsTool reports whether the app is a Steam runtime or compatibility tool.
func (m Manifest) IsTool() bool {
	for _, n := range toolNames {
		if strings.Contains(m.Name, n) {
			return true
		}
	}
	return false
}

func parseVDF(fs afero.Fs, path string) (map[string]any, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("error closing vdf file")
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return lowerKeys(m), nil
}

// lowerKeys lowercases every key of a parsed VDF tree. Valve treats keys
// case-insensitively and files in the wild mix "AppState" and "appstate".
func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			v = lowerKeys(sub)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

// ReadManifest parses a single app manifest.
func ReadManifest(fs afero.Fs, path string) (Manifest, error) {
	m, err := parseVDF(fs, path)
	if err != nil {
		return Manifest{}, err
	}

	appState, ok := m["appstate"].(map[string]any)
	if !ok {
		return Manifest{}, errNoAppState
	}

	appID, ok := appState["appid"].(string)
	if !ok || appID == "" {
		return Manifest{}, fmt.Errorf("%w: appid", errBadField)
	}
	if _, err := strconv.ParseUint(appID, 10, 32); err != nil {
		return Manifest{}, fmt.Errorf("%w: appid %q", errBadField, appID)
	}

	name, ok := appState["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return Manifest{}, fmt.Errorf("%w: name", errBadField)
	}

	flags := 0
	if s, ok := appState["stateflags"].(string); ok {
		flags, _ = strconv.Atoi(s)
	}

	installDir, _ := appState["installdir"].(string) //nolint:revive // installdir is optional

	return Manifest{
		AppID:      appID,
		Name:       strings.TrimSpace(name),
		InstallDir: installDir,
		StateFlags: flags,
	}, nil
}

// LibraryDirs returns the steamapps directories of every Steam library,
// starting with the main one below steamRoot. A missing or malformed
// libraryfolders.vdf only loses the extra libraries.
func LibraryDirs(fs afero.Fs, steamRoot string) []string {
	mainDir := filepath.Join(steamRoot, "steamapps")
	dirs := []string{mainDir}

	m, err := parseVDF(fs, filepath.Join(mainDir, "libraryfolders.vdf"))
	if err != nil {
		log.Warn().Err(err).Msg("error reading steam library folders")
		return dirs
	}

	lfs, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		log.Warn().Msg("libraryfolders is not a map")
		return dirs
	}

	keys := make([]string, 0, len(lfs))
	for k := range lfs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		var libraryPath string
		switch v := lfs[k].(type) {
		case map[string]any:
			libraryPath, _ = v["path"].(string)
		case string:
			// old format, numeric keys map straight to paths
			if _, err := strconv.Atoi(k); err == nil {
				libraryPath = v
			}
		}
		if libraryPath == "" {
			continue
		}
		dir := filepath.Join(filepath.Clean(libraryPath), "steamapps")
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// ManifestPaths lists the app manifests in a steamapps directory.
func ManifestPaths(fs afero.Fs, steamApps string) []string {
	entries, err := afero.ReadDir(fs, steamApps)
	if err != nil {
		log.Debug().Err(err).Str("path", steamApps).Msg("error listing steamapps folder")
		return nil
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "appmanifest_") || filepath.Ext(name) != ".acf" {
			continue
		}
		paths = append(paths, filepath.Join(steamApps, name))
	}
	return paths
}
