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

package shared

import (
	"os"
	"path/filepath"
)

// Common Flatpak app IDs.
const (
	FlatpakSteamID  = "com.valvesoftware.Steam"
	FlatpakLutrisID = "net.lutris.Lutris"
	FlatpakHeroicID = "com.heroicgameslauncher.hgl"
)

// FlatpakInfoPath is present at the root of every Flatpak sandbox.
const FlatpakInfoPath = "/.flatpak-info"

// FlatpakSandboxPrefix is where a Flatpak app's own files are mounted inside
// its sandbox.
const FlatpakSandboxPrefix = "/app"

// FlatpakBasePath returns the base path for Flatpak app data.
func FlatpakBasePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".var", "app")
}

// FlatpakAppPath returns the data path for a specific Flatpak app.
func FlatpakAppPath(appID string) string {
	return filepath.Join(FlatpakBasePath(), appID)
}

// Sandbox describes the environment the process was started in.
type Sandbox struct {
	// AppID is the Flatpak app ID reported by the sandbox, if any.
	AppID string
	// InfoFile is true if the Flatpak info file exists.
	InfoFile bool
}

// DetectSandbox inspects the environment for signs of a Flatpak sandbox. It
// has no side effects beyond reading the environment and a single stat.
func DetectSandbox() Sandbox {
	_, err := os.Stat(FlatpakInfoPath)
	return Sandbox{
		AppID:    os.Getenv("FLATPAK_ID"),
		InfoFile: err == nil,
	}
}

// IsSandboxed returns true if the process is running inside a Flatpak
// sandbox as the given app, and must relay host commands through
// flatpak-spawn. An empty appID matches any Flatpak sandbox.
func (s Sandbox) IsSandboxed(appID string) bool {
	if s.AppID != "" {
		return appID == "" || s.AppID == appID
	}
	return appID == "" && s.InfoFile
}
