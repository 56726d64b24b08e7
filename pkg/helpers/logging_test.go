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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// InitLogging replaces the global logger, so these tests don't run in parallel.
func TestInitLogging(t *testing.T) {
	t.Run("creates_nested_log_dir", func(t *testing.T) {
		logDir := filepath.Join(t.TempDir(), "logs", "nested")

		var buf bytes.Buffer
		require.NoError(t, InitLogging(logDir, []io.Writer{&buf}))

		log.Info().Msg("hello from test")

		assert.Contains(t, buf.String(), "hello from test")
		assert.FileExists(t, filepath.Join(logDir, LogFile))
		assert.NotNil(t, LogWriter())
	})

	t.Run("fails_when_log_dir_is_a_file", func(t *testing.T) {
		root := t.TempDir()
		blocker := filepath.Join(root, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

		err := InitLogging(filepath.Join(blocker, "logs"), nil)
		assert.Error(t, err)
	})
}
