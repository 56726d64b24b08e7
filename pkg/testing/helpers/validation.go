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


package helpers

import (
	"testing"

	"github.com/ZaparooProject/zaparoo-importer/pkg/games"
	"github.com/stretchr/testify/require"
)

// AssertValidResult validates that a source result would be accepted by the
// importer: every required game field is set and at most one artwork path
// is attached. Use this in tests that collect results from a source.
func AssertValidResult(t *testing.T, res games.Result) {
	t.Helper()

	require.NoError(t, games.Validate(res.Game), "game %q is invalid", res.Game.GameID)
	require.Equal(t, games.SpecVersion, res.Game.Version)

	if res.Data != nil {
		require.NoError(t, res.Data.Valid(), "game %q has conflicting artwork", res.Game.GameID)
		// An empty AdditionalData should have been a bare record
		require.True(t, res.Data.LocalIconPath != "" || res.Data.LocalImagePath != "",
			"game %q has empty additional data", res.Game.GameID)
	}
}
