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


package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty_string",
			input:    "",
			expected: "",
		},
		{
			name:     "no_username_in_path",
			input:    "/usr/share/applications/foo.desktop",
			expected: "/usr/share/applications/foo.desktop",
		},
		{
			name:     "lutris_database",
			input:    "/home/sam/.local/share/lutris/pga.db",
			expected: "/home/<user>/.local/share/lutris/pga.db",
		},
		{
			name:     "mixed_case_home",
			input:    "/Home/Sam/.var/app/com.valvesoftware.Steam/.steam/steam",
			expected: "/home/<user>/.var/app/com.valvesoftware.Steam/.steam/steam",
		},
		{
			name:     "macos_users_path",
			input:    "/Users/sam/Library/Application Support/Steam",
			expected: "/Users/<user>/Library/Application Support/Steam",
		},
		{
			name:     "windows_path",
			input:    "d:\\Users\\sam\\AppData\\Roaming\\heroic",
			expected: "C:\\Users\\<user>\\AppData\\Roaming\\heroic",
		},
		{
			name:     "several_paths_in_message",
			input:    "copying /home/alice/pga.db to /home/bob/tmp",
			expected: "copying /home/<user>/pga.db to /home/<user>/tmp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, newScrubber("").sanitizePath(tt.input))
		})
	}
}

func TestSanitizePathCurrentHome(t *testing.T) {
	t.Parallel()

	sc := newScrubber("/srv/players/sam/")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "inside_home", input: "/srv/players/sam/Games/pga.db", expected: "~/Games/pga.db"},
		{name: "home_itself", input: "stat /srv/players/sam", expected: "stat ~"},
		{name: "sibling_with_same_prefix", input: "/srv/players/samuel/x", expected: "/srv/players/samuel/x"},
		{name: "standard_home_still_scrubbed", input: "/home/alex/x", expected: "/home/<user>/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sc.sanitizePath(tt.input))
		})
	}
}

func TestRedactGameID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "steam_<game>", redactGameID("steam_440"))
	assert.Equal(t, "lutris_<game>", redactGameID("lutris_some_slug"))
	assert.Equal(t, "<game>", redactGameID("noprefix"))
	assert.Equal(t, "<game>", redactGameID("_440"))
}

func TestSanitizeEvent(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "sams-laptop",
		Message:    "failed to open /home/sam/.local/share/lutris/pga.db",
		Tags:       map[string]string{"dir": "/home/sam/Games"},
		Extra: map[string]any{
			"run":     "6f1c",
			"source":  "heroic",
			"game":    "heroic_Fortnite",
			"library": "/home/sam/Games/Heroic",
			"path":    "/home/sam/.config/heroic",
			"count":   3,
		},
		Exception: []sentry.Exception{{
			Value: "open /home/sam/x: permission denied",
			Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{{
				AbsPath:  "/home/sam/src/importer/lutris.go",
				Filename: "lutris.go",
			}}},
		}},
	}

	got := newScrubber("").sanitizeEvent(event)
	require.NotNil(t, got)
	assert.Empty(t, got.ServerName)
	assert.Equal(t, "failed to open /home/<user>/.local/share/lutris/pga.db", got.Message)

	assert.Equal(t, "heroic", got.Tags["source"])
	assert.Equal(t, "6f1c", got.Tags["run"])
	assert.Equal(t, "/home/<user>/Games", got.Tags["dir"])
	assert.NotContains(t, got.Extra, "source")
	assert.NotContains(t, got.Extra, "run")
	assert.NotContains(t, got.Extra, "library")
	assert.Equal(t, "heroic_<game>", got.Extra["game"])
	assert.Equal(t, "/home/<user>/.config/heroic", got.Extra["path"])
	assert.Equal(t, 3, got.Extra["count"])

	assert.Equal(t, "open /home/<user>/x: permission denied", got.Exception[0].Value)
	frame := got.Exception[0].Stacktrace.Frames[0]
	assert.Equal(t, "/home/<user>/src/importer/lutris.go", frame.AbsPath)
	assert.Equal(t, "lutris.go", frame.Filename)
}

func TestSanitizeEventCreatesTags(t *testing.T) {
	t.Parallel()

	got := newScrubber("").sanitizeEvent(&sentry.Event{Extra: map[string]any{"source": "steam"}})
	assert.Equal(t, map[string]string{"source": "steam"}, got.Tags)
	assert.Empty(t, got.Extra)
}

func TestInitDisabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
	}{
		{name: "not_enabled", opts: Options{DSN: "https://key@example.com/1"}},
		{name: "no_dsn", opts: Options{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.NoError(t, Init(tt.opts))
			assert.False(t, Enabled())
		})
	}
}

func TestCloseAndFlushWhenDisabled(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		Flush()
		Close()
	})
}
