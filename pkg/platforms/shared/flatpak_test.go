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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// withTempHome sets HOME to a temporary directory for the duration of the test.
func withTempHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	return tmpDir
}

func TestFlatpakAppPath(t *testing.T) {
	// Cannot run in parallel due to HOME env modification
	home := withTempHome(t)

	assert.Equal(t, filepath.Join(home, ".var", "app"), FlatpakBasePath())
	assert.Equal(t, filepath.Join(home, ".var", "app", FlatpakLutrisID), FlatpakAppPath(FlatpakLutrisID))
}

func TestSandboxIsSandboxed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		appID   string
		sandbox Sandbox
		want    bool
	}{
		{name: "not_sandboxed", sandbox: Sandbox{}, appID: "org.zaparoo.Importer", want: false},
		{name: "own_app", sandbox: Sandbox{AppID: "org.zaparoo.Importer"}, appID: "org.zaparoo.Importer", want: true},
		{name: "other_app", sandbox: Sandbox{AppID: "org.other.App"}, appID: "org.zaparoo.Importer", want: false},
		{name: "any_app_with_id", sandbox: Sandbox{AppID: "org.other.App"}, appID: "", want: true},
		{name: "info_file_only_any", sandbox: Sandbox{InfoFile: true}, appID: "", want: true},
		{name: "info_file_only_specific", sandbox: Sandbox{InfoFile: true}, appID: "org.zaparoo.Importer", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.sandbox.IsSandboxed(tt.appID))
		})
	}
}

func TestDetectSandboxReadsEnv(t *testing.T) {
	t.Setenv("FLATPAK_ID", "org.zaparoo.Importer")
	assert.Equal(t, "org.zaparoo.Importer", DetectSandbox().AppID)
}
