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


package desktop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const maxLineSize = 1 << 20

var (
	errInvalidLine   = errors.New("invalid line")
	errUnclosedGroup = errors.New("unclosed group header")
	errNoGroup       = errors.New("key outside of a group")
)

// keyFile holds the groups of a desktop entry file. Keys keep their locale
// suffix, so "Name[de]" and "Name" are different keys. Values are stored
// raw; use String or StringList to decode them.
type keyFile map[string]map[string]string

// parseKeyFile reads the freedesktop key file format. Values are taken
// verbatim after the "=", so quotes and backticks have no meaning.
func parseKeyFile(r io.Reader) (keyFile, error) {
	kf := make(keyFile)
	var group map[string]string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		line = strings.TrimLeftFunc(line, unicode.IsSpace)

		switch {
		case line == "" || line[0] == '#':
			continue
		case line[0] == '[':
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return nil, fmt.Errorf("line %d: %w", lineNo, errUnclosedGroup)
			}
			name := line[1:end]
			if kf[name] == nil {
				kf[name] = make(map[string]string)
			}
			group = kf[name]
		default:
			if group == nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, errNoGroup)
			}
			key, value, ok := strings.Cut(line, "=")
			key = strings.TrimRightFunc(key, unicode.IsSpace)
			if !ok || key == "" {
				return nil, fmt.Errorf("line %d: %w", lineNo, errInvalidLine)
			}
			group[key] = strings.TrimLeftFunc(value, unicode.IsSpace)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return kf, nil
}

// Has reports whether key is set in group.
func (kf keyFile) Has(group, key string) bool {
	_, ok := kf[group][key]
	return ok
}

// String returns the decoded value of key in group.
func (kf keyFile) String(group, key string) string {
	return unescape(kf[group][key], false)
}

// StringList returns the decoded items of a ";" separated list value. An
// escaped "\;" is part of an item.
func (kf keyFile) StringList(group, key string) []string {
	raw := kf[group][key]
	var (
		items []string
		cur   strings.Builder
	)
	for i := 0; i < len(raw); i++ {
		switch {
		case raw[i] == '\\' && i+1 < len(raw):
			cur.WriteByte(raw[i])
			cur.WriteByte(raw[i+1])
			i++
		case raw[i] == ';':
			items = append(items, unescape(cur.String(), true))
			cur.Reset()
		default:
			cur.WriteByte(raw[i])
		}
	}
	if cur.Len() > 0 {
		items = append(items, unescape(cur.String(), true))
	}
	return items
}

// unescape decodes the \s, \n, \t, \r and \\ escapes of desktop entry
// values, plus \; inside list items. Unknown escapes are kept as written.
func unescape(s string, inList bool) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 's':
			b.WriteByte(' ')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case ';':
			if inList {
				b.WriteByte(';')
			} else {
				b.WriteString(`\;`)
			}
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
