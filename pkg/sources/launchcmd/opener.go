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


package launchcmd

import (
	"strings"

	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/ids"
	"github.com/alessio/shellescape"
)

// OpenURL returns the command which hands url to the platform's default URL
// handler, so a launcher registered for the scheme starts the game.
func OpenURL(platformID, url string) string {
	switch platformID {
	case ids.Mac:
		return "open " + shellescape.Quote(url)
	case ids.Windows:
		// start treats the first quoted argument as the window title
		return `cmd /c start "" "` + strings.ReplaceAll(url, `"`, "%22") + `"`
	default:
		return "xdg-open " + shellescape.Quote(url)
	}
}
