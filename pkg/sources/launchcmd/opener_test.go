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
	"testing"

	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/ids"
	"github.com/stretchr/testify/assert"
)

func TestOpenURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		platform string
		url      string
		want     string
	}{
		{
			name:     "linux",
			platform: ids.Linux,
			url:      "steam://rungameid/440",
			want:     "xdg-open steam://rungameid/440",
		},
		{
			name:     "linux_quoted",
			platform: ids.Linux,
			url:      "heroic://launch/my game",
			want:     "xdg-open 'heroic://launch/my game'",
		},
		{
			name:     "mac",
			platform: ids.Mac,
			url:      "steam://rungameid/440",
			want:     "open steam://rungameid/440",
		},
		{
			name:     "mac_quoted",
			platform: ids.Mac,
			url:      "heroic://launch/it's",
			want:     `open 'heroic://launch/it'"'"'s'`,
		},
		{
			name:     "windows",
			platform: ids.Windows,
			url:      "steam://rungameid/440",
			want:     `cmd /c start "" "steam://rungameid/440"`,
		},
		{
			name:     "windows_embedded_quote",
			platform: ids.Windows,
			url:      `heroic://launch/a"b`,
			want:     `cmd /c start "" "heroic://launch/a%22b"`,
		},
		{
			name:     "unknown_platform_uses_xdg_open",
			platform: "",
			url:      "lutris:rungameid/bar",
			want:     "xdg-open lutris:rungameid/bar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, OpenURL(tt.platform, tt.url))
		})
	}
}
