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

package config

import "strings"

const DefaultIconTheme = "hicolor"

// Location override keys, one per external data root a source resolves.
const (
	LocationLutris      = "lutris"
	LocationLutrisCache = "lutris-cache"
	LocationSteam       = "steam"
	LocationHeroic      = "heroic"
)

type Sources struct {
	Desktop SourcesDesktop `toml:"desktop"`
	Lutris  SourcesLutris  `toml:"lutris"`
	Steam   SourcesSteam   `toml:"steam"`
	Heroic  SourcesHeroic  `toml:"heroic"`
}

type SourcesDesktop struct {
	Enabled   *bool  `toml:"enabled,omitempty"`
	IconTheme string `toml:"icon_theme,omitempty"`
}

type SourcesLutris struct {
	Enabled       *bool  `toml:"enabled,omitempty"`
	Location      string `toml:"location,omitempty"`
	CacheLocation string `toml:"cache_location,omitempty"`
	ImportSteam   bool   `toml:"import_steam"`
}

type SourcesSteam struct {
	Enabled  *bool  `toml:"enabled,omitempty"`
	Location string `toml:"location,omitempty"`
}

type SourcesHeroic struct {
	Enabled  *bool  `toml:"enabled,omitempty"`
	Location string `toml:"location,omitempty"`
}

// SourceEnabled reports whether a source may run. Sources are enabled unless
// explicitly turned off, and unknown IDs are always enabled.
func (c *Instance) SourceEnabled(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var enabled *bool
	switch strings.ToLower(id) {
	case "desktop":
		enabled = c.vals.Sources.Desktop.Enabled
	case "lutris":
		enabled = c.vals.Sources.Lutris.Enabled
	case "steam":
		enabled = c.vals.Sources.Steam.Enabled
	case "heroic":
		enabled = c.vals.Sources.Heroic.Enabled
	}

	return enabled == nil || *enabled
}

func (c *Instance) SetSourceEnabled(id string, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch strings.ToLower(id) {
	case "desktop":
		c.vals.Sources.Desktop.Enabled = &enabled
	case "lutris":
		c.vals.Sources.Lutris.Enabled = &enabled
	case "steam":
		c.vals.Sources.Steam.Enabled = &enabled
	case "heroic":
		c.vals.Sources.Heroic.Enabled = &enabled
	}
}

// LocationOverride returns the user configured root path for a location key,
// or an empty string if none is set.
func (c *Instance) LocationOverride(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch key {
	case LocationLutris:
		return c.vals.Sources.Lutris.Location
	case LocationLutrisCache:
		return c.vals.Sources.Lutris.CacheLocation
	case LocationSteam:
		return c.vals.Sources.Steam.Location
	case LocationHeroic:
		return c.vals.Sources.Heroic.Location
	default:
		return ""
	}
}

func (c *Instance) SetLocationOverride(key, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch key {
	case LocationLutris:
		c.vals.Sources.Lutris.Location = path
	case LocationLutrisCache:
		c.vals.Sources.Lutris.CacheLocation = path
	case LocationSteam:
		c.vals.Sources.Steam.Location = path
	case LocationHeroic:
		c.vals.Sources.Heroic.Location = path
	}
}

// LutrisImportSteam returns true if Lutris games using the Steam runner
// should be imported alongside the rest of the Lutris library.
func (c *Instance) LutrisImportSteam() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Sources.Lutris.ImportSteam
}

func (c *Instance) SetLutrisImportSteam(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Sources.Lutris.ImportSteam = enabled
}

func (c *Instance) IconTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Sources.Desktop.IconTheme == "" {
		return DefaultIconTheme
	}
	return c.vals.Sources.Desktop.IconTheme
}
