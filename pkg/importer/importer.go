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


// Package importer runs every applicable source and hands validated games
// to a sink. A failing source is reported but never stops the others.
package importer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ZaparooProject/zaparoo-importer/pkg/config"
	"github.com/ZaparooProject/zaparoo-importer/pkg/games"
	"github.com/ZaparooProject/zaparoo-importer/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of sources run at once when
// Importer.Concurrency isn't set.
const DefaultConcurrency = 4

// ErrSourcePanic wraps a panic recovered from a source.
var ErrSourcePanic = errors.New("source panicked")

// Sink receives each accepted game. Calls are serialised.
type Sink func(sourceID string, res games.Result)

// SourceReport is the outcome of one source in a run.
type SourceReport struct {
	Err      error
	ID       string
	Count    int
	Skipped  int
	Duration time.Duration
}

// Report is the outcome of a run.
type Report struct {
	RunID   string
	Sources []SourceReport
}

// Err joins the errors of every failed source, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, s := range r.Sources {
		if s.Err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", s.ID, s.Err))
		}
	}
	return errors.Join(errs...)
}

// Total is the number of games handed to the sink.
func (r Report) Total() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Count
	}
	return n
}

// AllFailed is true if at least one source ran and none succeeded.
func (r Report) AllFailed() bool {
	if len(r.Sources) == 0 {
		return false
	}
	for _, s := range r.Sources {
		if s.Err == nil {
			return false
		}
	}
	return true
}

// Importer selects and runs sources.
type Importer struct {
	Registry *sources.Registry
	// Cfg disables sources. A nil config enables all of them.
	Cfg      *config.Instance
	Platform string
	// Only restricts the run to these source IDs when not empty.
	Only        []string
	Concurrency int
	// Clock times each source. Defaults to the real clock.
	Clock clockwork.Clock
}

// Selected returns the sources a run would use, in registration order.
func (i *Importer) Selected() []sources.Source {
	if i.Registry == nil {
		return nil
	}

	var out []sources.Source
	for _, s := range i.Registry.ForPlatform(i.Platform) {
		if len(i.Only) > 0 && !slices.Contains(i.Only, s.ID()) {
			continue
		}
		if i.Cfg != nil && !i.Cfg.SourceEnabled(s.ID()) {
			log.Debug().Str("source", s.ID()).Msg("source disabled in config")
			continue
		}
		out = append(out, s)
	}
	return out
}

// Run imports from every selected source concurrently and blocks until all
// of them finish. Cancelling ctx stops sources between games.
func (i *Importer) Run(ctx context.Context, sink Sink) Report {
	selected := i.Selected()
	report := Report{
		RunID:   uuid.NewString(),
		Sources: make([]SourceReport, len(selected)),
	}

	clock := i.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	limit := i.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	log.Info().
		Str("run", report.RunID).
		Str("platform", i.Platform).
		Int("sources", len(selected)).
		Msg("starting import")

	var (
		g  errgroup.Group
		mu syncutil.Mutex
	)
	g.SetLimit(limit)

	for idx, src := range selected {
		g.Go(func() error {
			report.Sources[idx] = runSource(ctx, clock, report.RunID, src, func(res games.Result) {
				mu.Lock()
				defer mu.Unlock()
				sink(src.ID(), res)
			})
			return nil
		})
	}
	_ = g.Wait()

	log.Info().
		Str("run", report.RunID).
		Int("games", report.Total()).
		Err(report.Err()).
		Msg("import finished")

	return report
}

func runSource(
	ctx context.Context,
	clock clockwork.Clock,
	runID string,
	src sources.Source,
	emit func(games.Result),
) (sr SourceReport) {
	sr.ID = src.ID()
	start := clock.Now()
	logger := log.With().Str("run", runID).Str("source", sr.ID).Logger()

	defer func() {
		if r := recover(); r != nil {
			sr.Err = fmt.Errorf("%w: %v", ErrSourcePanic, r)
		}
		sr.Duration = clock.Since(start)
		if sr.Err != nil {
			logger.Error().Err(sr.Err).Int("games", sr.Count).Msg("source failed")
			return
		}
		logger.Debug().Int("games", sr.Count).Int("skipped", sr.Skipped).Msg("source finished")
	}()

	seen := make(map[string]bool)
	for res, err := range src.Games(ctx) {
		if err != nil {
			sr.Err = err
			return sr
		}
		if err := check(res); err != nil {
			logger.Warn().Err(err).Str("game", res.Game.GameID).Msg("dropping invalid game")
			sr.Skipped++
			continue
		}
		if seen[res.Game.GameID] {
			logger.Warn().Str("game", res.Game.GameID).Msg("dropping duplicate game")
			sr.Skipped++
			continue
		}
		seen[res.Game.GameID] = true

		emit(res)
		sr.Count++
	}
	return sr
}

func check(res games.Result) error {
	if err := games.Validate(res.Game); err != nil {
		return err //nolint:wrapcheck // already describes the game
	}
	if res.Data != nil {
		return res.Data.Valid()
	}
	return nil
}
