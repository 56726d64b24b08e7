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
	"context"
	"iter"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-importer/pkg/games"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/ids"
	testhelpers "github.com/ZaparooProject/zaparoo-importer/pkg/testing/helpers"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	steamRoot = "/home/user/.steam/steam"
	extraLib  = "/mnt/games/SteamLibrary"
)

var testTime = time.Unix(1700000000, 0)

const libraryFoldersVDF = `"libraryfolders"
{
	"0"
	{
		"path"		"/home/user/.steam/steam"
		"apps"
		{
			"440"		"123"
		}
	}
	"1"
	{
		"path"		"/mnt/games/SteamLibrary"
	}
}
`

func manifest(appID, name, flags string) string {
	return `"AppState"
{
	"appid"		"` + appID + `"
	"name"		"` + name + `"
	"StateFlags"		"` + flags + `"
	"installdir"		"` + name + `"
}
`
}

func newSource(t *testing.T, files map[string]any) *Source {
	t.Helper()

	h := testhelpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure(files))

	root := RootLocation(h.Fs, steamRoot)
	root.Candidates = nil
	return &Source{
		Fs:       h.Fs,
		Root:     root,
		Clock:    clockwork.NewFakeClockAt(testTime),
		Platform: ids.Linux,
	}
}

func collect(t *testing.T, seq iter.Seq2[games.Result, error]) []games.Result {
	t.Helper()
	var out []games.Result
	for res, err := range seq {
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestSourceInfo(t *testing.T) {
	t.Parallel()

	s := &Source{}
	assert.Equal(t, "steam", s.ID())
	assert.Equal(t, "Steam", s.Name())
	assert.ElementsMatch(t, []string{ids.Linux, ids.Mac, ids.Windows}, s.AvailableOn())
}

func TestGames(t *testing.T) {
	t.Parallel()

	s := newSource(t, map[string]any{
		steamRoot + "/steamapps/libraryfolders.vdf":                  libraryFoldersVDF,
		steamRoot + "/steamapps/appmanifest_440.acf":                 manifest("440", "Team Fortress 2", "4"),
		steamRoot + "/steamapps/appmanifest_620.acf":                 manifest("620", "Portal 2", "1026"),
		steamRoot + "/steamapps/appmanifest_1493710.acf":             manifest("1493710", "Proton Experimental", "4"),
		steamRoot + "/steamapps/appmanifest_1070560.acf":             manifest("1070560", "Steam Linux Runtime 1.0 (scout)", "4"),
		steamRoot + "/steamapps/appmanifest_broken.acf":              `"AppState" { "name"`,
		steamRoot + "/steamapps/notamanifest.txt":                    "x",
		steamRoot + "/appcache/librarycache/440/library_600x900.jpg": "jpg",
		extraLib + "/steamapps/appmanifest_570.acf":                  manifest("570", "Dota 2", "6"),
		extraLib + "/steamapps/appmanifest_440.acf":                  manifest("440", "Team Fortress 2", "4"),
	})

	results := collect(t, s.Games(context.Background()))
	require.Len(t, results, 2)

	tf2 := results[0]
	assert.Equal(t, "steam_440", tf2.Game.GameID)
	assert.Equal(t, "steam", tf2.Game.Source)
	assert.Equal(t, "Team Fortress 2", tf2.Game.Name)
	assert.Equal(t, "xdg-open steam://rungameid/440", tf2.Game.Executable)
	assert.Equal(t, testTime.Unix(), tf2.Game.Added)
	require.NotNil(t, tf2.Data)
	assert.Equal(t, steamRoot+"/appcache/librarycache/440/library_600x900.jpg", tf2.Data.LocalImagePath)

	dota := results[1]
	assert.Equal(t, "steam_570", dota.Game.GameID)
	require.NotNil(t, dota.Data)
	assert.Equal(t, steamRoot+"/appcache/librarycache/570_library_600x900.jpg", dota.Data.LocalImagePath)

	for _, r := range results {
		testhelpers.AssertValidResult(t, r)
	}
}

func TestGamesWithoutLibraryCache(t *testing.T) {
	t.Parallel()

	s := newSource(t, map[string]any{
		steamRoot + "/steamapps/libraryfolders.vdf":  "\"libraryfolders\"\n{\n}\n",
		steamRoot + "/steamapps/appmanifest_440.acf": manifest("440", "Team Fortress 2", "4"),
	})

	results := collect(t, s.Games(context.Background()))
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Data)
}

func TestGamesExecutablePerPlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		platform string
		want     string
	}{
		{platform: ids.Linux, want: "xdg-open steam://rungameid/440"},
		{platform: ids.Mac, want: "open steam://rungameid/440"},
		{platform: ids.Windows, want: `cmd /c start "" "steam://rungameid/440"`},
	}

	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			t.Parallel()

			s := newSource(t, map[string]any{
				steamRoot + "/steamapps/libraryfolders.vdf":  "\"libraryfolders\"\n{\n}\n",
				steamRoot + "/steamapps/appmanifest_440.acf": manifest("440", "Team Fortress 2", "4"),
			})
			s.Platform = tt.platform

			results := collect(t, s.Games(context.Background()))
			require.Len(t, results, 1)
			assert.Equal(t, tt.want, results[0].Game.Executable)
			assert.Equal(t, tt.want, Executable(tt.platform, "440"))
		})
	}
}

func TestGamesNotInstalled(t *testing.T) {
	t.Parallel()

	s := newSource(t, map[string]any{
		"/home/user/.steam": nil,
	})
	assert.Empty(t, collect(t, s.Games(context.Background())))
	assert.Empty(t, collect(t, (&Source{}).Games(context.Background())))
}

func TestGamesCancelled(t *testing.T) {
	t.Parallel()

	s := newSource(t, map[string]any{
		steamRoot + "/steamapps/libraryfolders.vdf":  libraryFoldersVDF,
		steamRoot + "/steamapps/appmanifest_440.acf": manifest("440", "Team Fortress 2", "4"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range s.Games(ctx) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], context.Canceled)
}

func TestLibraryDirs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "current_format",
			content: libraryFoldersVDF,
			want:    []string{steamRoot + "/steamapps", extraLib + "/steamapps"},
		},
		{
			name:    "old_format",
			content: "\"LibraryFolders\"\n{\n\t\"TimeNextStatsReport\"\t\"1\"\n\t\"1\"\t\"/mnt/old\"\n}\n",
			want:    []string{steamRoot + "/steamapps", "/mnt/old/steamapps"},
		},
		{
			name:    "wrong_root_key",
			content: "\"notlibraryfolders\"\n{\n}\n",
			want:    []string{steamRoot + "/steamapps"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := testhelpers.NewMemoryFS()
			require.NoError(t, h.WriteFile(steamRoot+"/steamapps/libraryfolders.vdf", []byte(tt.content)))
			assert.Equal(t, tt.want, LibraryDirs(h.Fs, steamRoot))
		})
	}

	t.Run("missing_file", func(t *testing.T) {
		t.Parallel()
		h := testhelpers.NewMemoryFS()
		assert.Equal(t, []string{steamRoot + "/steamapps"}, LibraryDirs(h.Fs, steamRoot))
	})
}

func TestReadManifest(t *testing.T) {
	t.Parallel()

	h := testhelpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure(map[string]any{
		"/lib/ok.acf":      manifest("440", "  Team Fortress 2  ", "4"),
		"/lib/noid.acf":    "\"AppState\"\n{\n\t\"name\"\t\"No ID\"\n}\n",
		"/lib/badid.acf":   manifest("abc", "Bad ID", "4"),
		"/lib/noname.acf":  "\"AppState\"\n{\n\t\"appid\"\t\"1\"\n}\n",
		"/lib/nostate.acf": "\"Other\"\n{\n}\n",
	}))

	m, err := ReadManifest(h.Fs, "/lib/ok.acf")
	require.NoError(t, err)
	assert.Equal(t, Manifest{AppID: "440", Name: "Team Fortress 2", InstallDir: "  Team Fortress 2  ", StateFlags: 4}, m)
	assert.True(t, m.Installed())
	assert.False(t, m.IsTool())

	for _, p := range []string{"/lib/noid.acf", "/lib/badid.acf", "/lib/noname.acf", "/lib/nostate.acf", "/lib/missing.acf"} {
		_, err := ReadManifest(h.Fs, p)
		require.Error(t, err, p)
	}
}

func TestManifestFlags(t *testing.T) {
	t.Parallel()

	assert.False(t, Manifest{StateFlags: 1026}.Installed())
	assert.True(t, Manifest{StateFlags: 6}.Installed())
	assert.True(t, Manifest{Name: "Steamworks Common Redistributables"}.IsTool())
	assert.True(t, Manifest{Name: "Proton 9.0"}.IsTool())
	assert.False(t, Manifest{Name: "Portal"}.IsTool())
}

func TestLowerKeys(t *testing.T) {
	t.Parallel()

	got := lowerKeys(map[string]any{
		"AppState": map[string]any{
			"AppID":      "123",
			"StateFlags": "MixedCaseValue",
		},
	})

	state, ok := got["appstate"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "123", state["appid"])
	assert.Equal(t, "MixedCaseValue", state["stateflags"])
	assert.NotContains(t, got, "AppState")
	assert.Equal(t, got, lowerKeys(got))
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	assert.Len(t, Candidates("linux"), 3)
	assert.Equal(t, []string{"~/Library/Application Support/Steam"}, Candidates("darwin"))
	assert.Contains(t, Candidates("windows"), `C:\Program Files (x86)\Steam`)
}
