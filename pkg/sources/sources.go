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

// Package sources defines the contract every game import source implements
// and a registry the import runner selects sources from.
//
// A source produces its games lazily as an iter.Seq2 of results and errors.
// Each call to Games starts a new pass; the returned sequence itself may only
// be ranged over once. Breaking out of the range loop early is always safe:
// sources release temporary files and database handles on every exit path.
package sources

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/ZaparooProject/zaparoo-importer/pkg/games"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrConsumed is yielded when a single-pass sequence is ranged over again.
	ErrConsumed = errors.New("source sequence already consumed")
	// ErrDuplicateSource is returned when registering a source ID twice.
	ErrDuplicateSource = errors.New("source already registered")
)

// Source discovers games from one external system.
type Source interface {
	// ID returns the stable, unique ID of this source. It prefixes every
	// game ID the source produces.
	ID() string
	// Name returns the human-readable name of the source.
	Name() string
	// AvailableOn returns the platform IDs this source is meaningful on.
	AvailableOn() []string
	// Games returns a lazy, single-pass sequence of discovered games. A
	// fatal error is yielded once, after which the sequence ends. A source
	// whose external data can't be found yields nothing.
	Games(ctx context.Context) iter.Seq2[games.Result, error]
}

// IsAvailableOn returns true if the source declares support for platformID.
func IsAvailableOn(s Source, platformID string) bool {
	return slices.Contains(s.AvailableOn(), platformID)
}

// SinglePass wraps a sequence so it can only be ranged over once. Later
// attempts yield ErrConsumed instead of silently re-running the pass.
func SinglePass(seq iter.Seq2[games.Result, error]) iter.Seq2[games.Result, error] {
	var used atomic.Bool
	return func(yield func(games.Result, error) bool) {
		if used.Swap(true) {
			yield(games.Result{}, ErrConsumed)
			return
		}
		seq(yield)
	}
}

// Empty is the sequence of a source with nothing to import.
func Empty() iter.Seq2[games.Result, error] {
	return func(func(games.Result, error) bool) {}
}

// Fail is a sequence which yields a single fatal error.
func Fail(err error) iter.Seq2[games.Result, error] {
	return func(yield func(games.Result, error) bool) {
		yield(games.Result{}, err)
	}
}

// AddedNow captures the import timestamp shared by every game in one pass.
func AddedNow(clock clockwork.Clock) int64 {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return clock.Now().Unix()
}
