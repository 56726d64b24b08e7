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

// Package location finds where an external application keeps its data by
// testing an ordered list of candidate root directories.
package location

import (
	"errors"
	"path/filepath"
	"slices"
	"sync"

	"github.com/ZaparooProject/zaparoo-importer/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrNotResolved is returned by MustPath when a location was not found.
var ErrNotResolved = errors.New("location not resolved")

// Path is a required entry below a candidate root.
type Path struct {
	// Rel is the path relative to the candidate root.
	Rel string
	// Dir is true if the entry must be a directory, false for a file.
	Dir bool
}

// File is shorthand for a required file.
func File(rel string) Path {
	return Path{Rel: rel}
}

// Dir is shorthand for a required directory.
func Dir(rel string) Path {
	return Path{Rel: rel, Dir: true}
}

// Location describes the possible roots of one external data directory.
// A Location resolves at most once; create a new one to pick up changed
// overrides or newly installed applications.
type Location struct {
	Fs    afero.Fs
	Paths map[string]Path
	// Name identifies the location in logs.
	Name string
	// Override is a user configured root, tried before any candidate.
	Override string
	// Candidates are root path expressions in priority order. They may
	// start with "~" and reference environment variables.
	Candidates []string

	resolved Resolved
	ok       bool
	once     sync.Once
}

// Resolved maps logical path names to absolute paths below a chosen root.
type Resolved struct {
	paths map[string]string
	Root  string
}

// Path returns the absolute path for a logical name, or an empty string if
// the name wasn't part of the location.
func (r Resolved) Path(name string) string {
	return r.paths[name]
}

// Names returns the sorted logical names of the resolved location.
func (r Resolved) Names() []string {
	names := make([]string, 0, len(r.paths))
	for k := range r.paths {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Roots returns the expanded candidate roots in the order they are tried,
// with the override first when set.
func (l *Location) Roots() []string {
	roots := make([]string, 0, len(l.Candidates)+1)
	if l.Override != "" {
		roots = append(roots, helpers.ExpandPath(l.Override))
	}
	for _, c := range l.Candidates {
		if c == "" {
			continue
		}
		roots = append(roots, helpers.ExpandPath(c))
	}
	return roots
}

// Resolve returns the paths below the first root which contains every
// required path with the right type. The bool is false if no root matched,
// which usually just means the application isn't installed.
func (l *Location) Resolve() (Resolved, bool) {
	l.once.Do(func() {
		l.resolved, l.ok = l.resolve()
	})
	return l.resolved, l.ok
}

// MustPath resolves the location and returns the absolute path of name.
func (l *Location) MustPath(name string) (string, error) {
	res, ok := l.Resolve()
	if !ok {
		return "", ErrNotResolved
	}
	p := res.Path(name)
	if p == "" {
		return "", ErrNotResolved
	}
	return p, nil
}

func (l *Location) resolve() (Resolved, bool) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	for _, root := range l.Roots() {
		paths, ok := checkRoot(fs, root, l.Paths)
		if !ok {
			log.Debug().Str("location", l.Name).Str("root", root).Msg("candidate root incomplete")
			continue
		}
		log.Debug().Str("location", l.Name).Str("root", root).Msg("resolved location")
		return Resolved{Root: root, paths: paths}, true
	}

	log.Debug().Str("location", l.Name).Msg("location not found")
	return Resolved{}, false
}

func checkRoot(fs afero.Fs, root string, required map[string]Path) (map[string]string, bool) {
	if ok, err := afero.DirExists(fs, root); err != nil || !ok {
		return nil, false
	}

	paths := make(map[string]string, len(required))
	for name, p := range required {
		abs := filepath.Join(root, p.Rel)
		info, err := fs.Stat(abs)
		if err != nil || info.IsDir() != p.Dir {
			return nil, false
		}
		paths[name] = abs
	}
	return paths, true
}
