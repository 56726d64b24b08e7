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

package sources

import (
	"fmt"

	"github.com/ZaparooProject/zaparoo-importer/pkg/helpers/syncutil"
)

// Registry holds sources in registration order.
type Registry struct {
	byID    map[string]Source
	ordered []Source
	mu      syncutil.RWMutex
}

func NewRegistry(srcs ...Source) (*Registry, error) {
	r := &Registry{byID: make(map[string]Source)}
	for _, s := range srcs {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(s Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[s.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, s.ID())
	}
	r.byID[s.ID()] = s
	r.ordered = append(r.ordered, s)
	return nil
}

func (r *Registry) Get(id string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// All returns every registered source in registration order.
func (r *Registry) All() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Source(nil), r.ordered...)
}

// ForPlatform returns the sources which are meaningful on platformID.
func (r *Registry) ForPlatform(platformID string) []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Source
	for _, s := range r.ordered {
		if IsAvailableOn(s, platformID) {
			out = append(out, s)
		}
	}
	return out
}
