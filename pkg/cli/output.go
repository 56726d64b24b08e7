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


package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ZaparooProject/zaparoo-importer/pkg/config"
	"github.com/ZaparooProject/zaparoo-importer/pkg/games"
	"github.com/ZaparooProject/zaparoo-importer/pkg/importer"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources"
	"github.com/rs/zerolog/log"
)

// ErrAllFailed is returned by Import when no selected source succeeded.
var ErrAllFailed = errors.New("all sources failed")

// Record is one line of import output.
type Record struct {
	games.Game
	Data *games.AdditionalData `json:"additional_data,omitempty"`
}

// List writes a table of the sources registered for platformID and whether
// the config enables them.
func List(w io.Writer, reg *sources.Registry, cfg *config.Instance, platformID string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tENABLED")
	for _, s := range reg.ForPlatform(platformID) {
		enabled := cfg == nil || cfg.SourceEnabled(s.ID())
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\n", s.ID(), s.Name(), enabled)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write source list: %w", err)
	}
	return nil
}

// Emit returns a sink which writes each record as a JSON line to w.
func Emit(w io.Writer) importer.Sink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return func(sourceID string, res games.Result) {
		if err := enc.Encode(Record{Game: res.Game, Data: res.Data}); err != nil {
			log.Error().Err(err).Str("source", sourceID).Str("game", res.Game.GameID).
				Msg("failed to write record")
		}
	}
}

// Import runs imp and writes every record to w. Failures of individual
// sources are only logged; ErrAllFailed is returned if none succeeded.
func Import(ctx context.Context, w io.Writer, imp *importer.Importer) (importer.Report, error) {
	report := imp.Run(ctx, Emit(w))
	for _, s := range report.Sources {
		if s.Err != nil {
			log.Warn().Err(s.Err).Str("source", s.ID).Msg("source skipped")
		}
	}
	if report.AllFailed() {
		return report, fmt.Errorf("%w: %w", ErrAllFailed, report.Err())
	}
	return report, nil
}
