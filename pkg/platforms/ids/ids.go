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

// Package ids provides platform ID constants shared by sources and the
// import runner. This package has no dependencies to avoid import cycles.
package ids

import "runtime"

const (
	Linux   = "linux"
	Mac     = "mac"
	Windows = "windows"
)

// Current returns the platform ID for the running operating system, or an
// empty string if the OS has no matching platform.
func Current() string {
	switch runtime.GOOS {
	case "linux":
		return Linux
	case "darwin":
		return Mac
	case "windows":
		return Windows
	default:
		return ""
	}
}
