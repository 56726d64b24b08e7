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


// Package icons looks up application icons in freedesktop icon themes.
//
// Only the parts of the freedesktop icon theme specification needed to find a single
// large application icon are implemented: theme inheritance, directory
// size matching and the flat pixmaps fallback.
package icons

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-importer/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// DefaultTheme is the fallback theme every icon theme implicitly inherits.
const DefaultTheme = "hicolor"

const (
	indexFile    = "index.theme"
	themeSection = "Icon Theme"
	maxInherits  = 8
)

// Extensions are the icon file types tried, in order.
var Extensions = []string{".png", ".svg", ".xpm"}

type dirType int

const (
	typeThreshold dirType = iota
	typeFixed
	typeScalable
)

type themeDir struct {
	path      string
	size      int
	minSize   int
	maxSize   int
	threshold int
	kind      dirType
}

func (d themeDir) matches(size int) bool {
	switch d.kind {
	case typeFixed:
		return d.size == size
	case typeScalable:
		return d.minSize <= size && size <= d.maxSize
	default:
		return d.size-d.threshold <= size && size <= d.size+d.threshold
	}
}

func (d themeDir) distance(size int) int {
	lo, hi := d.size, d.size
	switch d.kind {
	case typeScalable:
		lo, hi = d.minSize, d.maxSize
	case typeThreshold:
		lo, hi = d.size-d.threshold, d.size+d.threshold
	case typeFixed:
	}
	switch {
	case size < lo:
		return lo - size
	case size > hi:
		return size - hi
	default:
		return 0
	}
}

type themeIndex struct {
	inherits []string
	dirs     []themeDir
}

// Theme finds icons across a set of base directories such as
// /usr/share/icons and /usr/share/pixmaps.
type Theme struct {
	fs      afero.Fs
	indexes map[string]*themeIndex
	name    string
	paths   []string
	mu      syncutil.Mutex
}

// New returns a Theme which prefers the named theme and falls back to
// hicolor. An empty name means hicolor only.
func New(fs afero.Fs, name string) *Theme {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if name == "" {
		name = DefaultTheme
	}
	return &Theme{
		fs:      fs,
		name:    name,
		indexes: make(map[string]*themeIndex),
	}
}

// AddSearchPath appends a base directory. Earlier paths take priority.
func (t *Theme) AddSearchPath(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = append(t.paths, path)
	clear(t.indexes)
}

// SearchPaths returns the registered base directories in priority order.
func (t *Theme) SearchPaths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.paths...)
}

// Lookup returns the path of the icon file best matching name at the given
// pixel size. The bool is false if no file was found.
func (t *Theme) Lookup(name string, size int) (string, bool) {
	if name == "" {
		return "", false
	}
	name = trimExt(name)

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, theme := range t.chain() {
		if p, ok := t.lookupInTheme(theme, name, size); ok {
			return p, true
		}
	}

	for _, base := range t.paths {
		if p, ok := t.findFile(base, name); ok {
			return p, true
		}
	}

	log.Debug().Str("icon", name).Int("size", size).Msg("icon not found")
	return "", false
}

// chain returns the theme followed by its inherited themes, ending in
// hicolor.
func (t *Theme) chain() []string {
	var chain []string
	seen := make(map[string]bool)
	queue := []string{t.name}
	for len(queue) > 0 && len(chain) < maxInherits {
		name := queue[0]
		queue = queue[1:]
		if seen[name] || name == DefaultTheme {
			continue
		}
		seen[name] = true
		chain = append(chain, name)
		if idx := t.index(name); idx != nil {
			queue = append(queue, idx.inherits...)
		}
	}
	return append(chain, DefaultTheme)
}

func (t *Theme) lookupInTheme(theme, name string, size int) (string, bool) {
	idx := t.index(theme)
	if idx == nil {
		return "", false
	}

	for _, d := range idx.dirs {
		if !d.matches(size) {
			continue
		}
		for _, base := range t.paths {
			if p, ok := t.findFile(filepath.Join(base, theme, d.path), name); ok {
				return p, true
			}
		}
	}

	best := ""
	bestDist := -1
	for _, d := range idx.dirs {
		dist := d.distance(size)
		if bestDist >= 0 && dist >= bestDist {
			continue
		}
		for _, base := range t.paths {
			if p, ok := t.findFile(filepath.Join(base, theme, d.path), name); ok {
				best, bestDist = p, dist
				break
			}
		}
	}
	return best, best != ""
}

func (t *Theme) findFile(dir, name string) (string, bool) {
	for _, ext := range Extensions {
		p := filepath.Join(dir, name+ext)
		if ok, err := afero.Exists(t.fs, p); err == nil && ok {
			return p, true
		}
	}
	return "", false
}

// index loads the first index.theme of a theme found in the search paths,
// or builds one from the directory layout if no base has an index. Returns
// nil if the theme isn't installed at all.
func (t *Theme) index(theme string) *themeIndex {
	if idx, ok := t.indexes[theme]; ok {
		return idx
	}

	var roots []string
	for _, base := range t.paths {
		root := filepath.Join(base, theme)
		if ok, err := afero.DirExists(t.fs, root); err == nil && ok {
			roots = append(roots, root)
		}
	}

	var idx *themeIndex
	for _, root := range roots {
		parsed, err := t.parseIndex(filepath.Join(root, indexFile))
		if err != nil {
			log.Debug().Err(err).Str("theme", theme).Str("root", root).Msg("no usable icon theme index")
			continue
		}
		idx = parsed
		break
	}

	if idx == nil && len(roots) > 0 {
		idx = &themeIndex{}
		seen := make(map[string]bool)
		for _, root := range roots {
			for _, d := range t.scanLayout(root) {
				if !seen[d.path] {
					seen[d.path] = true
					idx.dirs = append(idx.dirs, d)
				}
			}
		}
	}

	t.indexes[theme] = idx
	return idx
}

func (t *Theme) parseIndex(path string) (*themeIndex, error) {
	data, err := afero.ReadFile(t.fs, path)
	if err != nil {
		//nolint:wrapcheck // only logged
		return nil, err
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
		KeyValueDelimiters:  "=",
	}, data)
	if err != nil {
		//nolint:wrapcheck // only logged
		return nil, err
	}

	head, err := f.GetSection(themeSection)
	if err != nil {
		//nolint:wrapcheck // only logged
		return nil, err
	}

	idx := &themeIndex{
		inherits: splitList(head.Key("Inherits").String()),
	}
	for _, dir := range splitList(head.Key("Directories").String()) {
		sec, err := f.GetSection(dir)
		if err != nil {
			continue
		}
		size := sec.Key("Size").MustInt(0)
		if size <= 0 {
			continue
		}
		d := themeDir{
			path:      dir,
			size:      size,
			minSize:   sec.Key("MinSize").MustInt(size),
			maxSize:   sec.Key("MaxSize").MustInt(size),
			threshold: sec.Key("Threshold").MustInt(2),
		}
		switch sec.Key("Type").String() {
		case "Fixed":
			d.kind = typeFixed
		case "Scalable":
			d.kind = typeScalable
		default:
			d.kind = typeThreshold
		}
		idx.dirs = append(idx.dirs, d)
	}
	return idx, nil
}

// scanLayout lists the conventional NxN/<context> and scalable/<context>
// directories of a theme root.
func (t *Theme) scanLayout(root string) []themeDir {
	var dirs []themeDir
	sizes, err := afero.ReadDir(t.fs, root)
	if err != nil {
		return nil
	}
	for _, sd := range sizes {
		if !sd.IsDir() {
			continue
		}
		tmpl := themeDir{kind: typeThreshold, threshold: 2}
		if sd.Name() == "scalable" {
			tmpl = themeDir{kind: typeScalable, size: 128, minSize: 1, maxSize: 1024}
		} else {
			n, ok := parseSizeDir(sd.Name())
			if !ok {
				continue
			}
			tmpl.size, tmpl.minSize, tmpl.maxSize = n, n, n
		}
		contexts, err := afero.ReadDir(t.fs, filepath.Join(root, sd.Name()))
		if err != nil {
			continue
		}
		for _, c := range contexts {
			if !c.IsDir() {
				continue
			}
			d := tmpl
			d.path = filepath.Join(sd.Name(), c.Name())
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// parseSizeDir parses names like "512x512" and "256x256@2".
func parseSizeDir(name string) (int, bool) {
	name, _, _ = strings.Cut(name, "@")
	w, h, ok := strings.Cut(name, "x")
	if !ok || w != h || w == "" {
		return 0, false
	}
	// ParseUint rejects signs, and the 31 bit limit keeps the size an int
	n, err := strconv.ParseUint(w, 10, 31)
	if err != nil || n == 0 {
		return 0, false
	}
	return int(n), true
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func trimExt(name string) string {
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if strings.EqualFold(ext, e) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
