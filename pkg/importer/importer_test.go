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


package importer

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-importer/pkg/config"
	"github.com/ZaparooProject/zaparoo-importer/pkg/games"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/ids"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	err       error
	onStart   func()
	id        string
	platforms []string
	results   []games.Result
	panics    bool
}

func (f *fakeSource) ID() string            { return f.id }
func (f *fakeSource) Name() string          { return f.id }
func (f *fakeSource) AvailableOn() []string { return f.platforms }

func (f *fakeSource) Games(context.Context) iter.Seq2[games.Result, error] {
	return sources.SinglePass(func(yield func(games.Result, error) bool) {
		if f.onStart != nil {
			f.onStart()
		}
		for _, r := range f.results {
			if !yield(r, nil) {
				return
			}
		}
		if f.panics {
			panic("boom")
		}
		if f.err != nil {
			yield(games.Result{}, f.err)
		}
	})
}

func game(source, id string) games.Game {
	return games.Game{
		Version:    games.SpecVersion,
		Source:     source,
		GameID:     source + "_" + id,
		Name:       "Game " + id,
		Executable: "run " + id,
	}
}

func linuxSource(id string, results ...games.Result) *fakeSource {
	return &fakeSource{id: id, platforms: []string{ids.Linux}, results: results}
}

func newImporter(t *testing.T, srcs ...sources.Source) *Importer {
	t.Helper()
	reg, err := sources.NewRegistry(srcs...)
	require.NoError(t, err)
	return &Importer{Registry: reg, Platform: ids.Linux}
}

type collected struct {
	bySource map[string][]games.Result
}

func (c *collected) sink(sourceID string, res games.Result) {
	c.bySource[sourceID] = append(c.bySource[sourceID], res)
}

func newCollected() *collected {
	return &collected{bySource: make(map[string][]games.Result)}
}

func TestRunMeasuresSourceDuration(t *testing.T) {
	t.Parallel()

	fc := clockwork.NewFakeClockAt(time.Unix(1700000000, 0))
	slow := linuxSource("slow", games.Bare(game("slow", "1")))
	slow.onStart = func() { fc.Advance(3 * time.Second) }
	failing := &fakeSource{
		id:        "failing",
		platforms: []string{ids.Linux},
		err:       errors.New("scan failed"),
		onStart:   func() { fc.Advance(2 * time.Second) },
	}

	imp := newImporter(t, slow, failing)
	imp.Clock = fc
	imp.Concurrency = 1

	report := imp.Run(context.Background(), newCollected().sink)

	require.Len(t, report.Sources, 2)
	assert.Equal(t, 3*time.Second, report.Sources[0].Duration)
	require.Error(t, report.Sources[1].Err)
	assert.Equal(t, 2*time.Second, report.Sources[1].Duration)
}

func TestRunCollectsAllSources(t *testing.T) {
	t.Parallel()

	imp := newImporter(t,
		linuxSource("a", games.Bare(game("a", "1")), games.WithIcon(game("a", "2"), "/icon.png")),
		linuxSource("b", games.WithImage(game("b", "1"), "/cover.jpg")),
	)

	c := newCollected()
	report := imp.Run(context.Background(), c.sink)

	require.NoError(t, report.Err())
	_, err := uuid.Parse(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total())
	assert.False(t, report.AllFailed())

	require.Len(t, report.Sources, 2)
	assert.Equal(t, "a", report.Sources[0].ID)
	assert.Equal(t, 2, report.Sources[0].Count)
	assert.Equal(t, "b", report.Sources[1].ID)
	assert.Equal(t, 1, report.Sources[1].Count)

	assert.Len(t, c.bySource["a"], 2)
	assert.Len(t, c.bySource["b"], 1)
	assert.Equal(t, "/icon.png", c.bySource["a"][1].Data.LocalIconPath)
}

func TestRunPartialFailure(t *testing.T) {
	t.Parallel()

	errDB := errors.New("database locked")
	failing := linuxSource("failing", games.Bare(game("failing", "1")))
	failing.err = errDB

	imp := newImporter(t,
		failing,
		&fakeSource{id: "panicky", platforms: []string{ids.Linux}, panics: true},
		linuxSource("ok", games.Bare(game("ok", "1"))),
	)

	c := newCollected()
	report := imp.Run(context.Background(), c.sink)

	err := report.Err()
	require.Error(t, err)
	require.ErrorIs(t, err, errDB)
	require.ErrorIs(t, err, ErrSourcePanic)
	assert.Contains(t, err.Error(), "source failing")
	assert.False(t, report.AllFailed())

	assert.Equal(t, 1, report.Sources[0].Count)
	require.ErrorIs(t, report.Sources[0].Err, errDB)
	require.ErrorIs(t, report.Sources[1].Err, ErrSourcePanic)
	require.NoError(t, report.Sources[2].Err)
	assert.Len(t, c.bySource["ok"], 1)
}

func TestRunAllFailed(t *testing.T) {
	t.Parallel()

	src := linuxSource("only")
	src.err = errors.New("nope")

	report := newImporter(t, src).Run(context.Background(), func(string, games.Result) {})
	assert.True(t, report.AllFailed())
	assert.False(t, Report{}.AllFailed())
}

func TestRunDropsInvalidAndDuplicateGames(t *testing.T) {
	t.Parallel()

	noName := game("a", "2")
	noName.Name = ""
	conflicting := games.Result{
		Game: game("a", "3"),
		Data: &games.AdditionalData{LocalIconPath: "/i.png", LocalImagePath: "/c.jpg"},
	}

	imp := newImporter(t, linuxSource("a",
		games.Bare(game("a", "1")),
		games.Bare(noName),
		conflicting,
		games.Bare(game("a", "1")),
	))

	c := newCollected()
	report := imp.Run(context.Background(), c.sink)

	require.NoError(t, report.Err())
	assert.Equal(t, 1, report.Sources[0].Count)
	assert.Equal(t, 3, report.Sources[0].Skipped)
	assert.Len(t, c.bySource["a"], 1)
}

func TestSelected(t *testing.T) {
	t.Parallel()

	win := &fakeSource{id: "win", platforms: []string{ids.Windows}}
	both := &fakeSource{id: "both", platforms: []string{ids.Linux, ids.Windows}}
	off := linuxSource("lutris")
	imp := newImporter(t, win, both, off)

	cfg := config.NewInMemory(config.BaseDefaults)
	cfg.SetSourceEnabled("lutris", false)

	imp.Cfg = cfg
	got := imp.Selected()
	require.Len(t, got, 1)
	assert.Equal(t, "both", got[0].ID())

	imp.Cfg = nil
	assert.Len(t, imp.Selected(), 2)

	imp.Only = []string{"lutris"}
	got = imp.Selected()
	require.Len(t, got, 1)
	assert.Equal(t, "lutris", got[0].ID())

	assert.Empty(t, (&Importer{}).Selected())
}

func TestRunConcurrencyLimit(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32
	onStart := func() {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
	}

	var srcs []sources.Source
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		s := linuxSource(id, games.Bare(game(id, "1")))
		s.onStart = onStart
		srcs = append(srcs, s)
	}

	imp := newImporter(t, srcs...)
	imp.Concurrency = 2

	report := imp.Run(context.Background(), func(string, games.Result) {})
	require.NoError(t, report.Err())
	assert.Equal(t, 5, report.Total())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunNoSources(t *testing.T) {
	t.Parallel()

	report := newImporter(t).Run(context.Background(), func(string, games.Result) {
		t.Error("sink called without sources")
	})
	assert.Empty(t, report.Sources)
	require.NoError(t, report.Err())
	assert.NotEmpty(t, report.RunID)
}
