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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOSFS creates a filesystem helper using the real filesystem (for integration tests)
func NewOSFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewOsFs(),
	}
}

// DesktopEntry is the content of a test .desktop file. Extra lines are
// written verbatim after the standard keys.
type DesktopEntry struct {
	Name       string
	Exec       string
	Icon       string
	Categories string
	NoDisplay  string
	Extra      []string
}

// String renders the entry in desktop file format. Empty fields are omitted.
func (e DesktopEntry) String() string {
	var sb strings.Builder
	sb.WriteString("[Desktop Entry]\nType=Application\n")
	write := func(k, v string) {
		if v != "" {
			sb.WriteString(k + "=" + v + "\n")
		}
	}
	write("Name", e.Name)
	write("Exec", e.Exec)
	write("Icon", e.Icon)
	write("Categories", e.Categories)
	write("NoDisplay", e.NoDisplay)
	for _, l := range e.Extra {
		sb.WriteString(l + "\n")
	}
	return sb.String()
}

// CreateDesktopEntry writes entry to dir/name and returns the full path.
func (h *FSHelper) CreateDesktopEntry(dir, name string, entry DesktopEntry) (string, error) {
	path := filepath.Join(dir, name)
	if err := h.WriteFile(path, []byte(entry.String())); err != nil {
		return "", err
	}
	return path, nil
}

// CreateIcon writes an empty icon file below an icon theme directory, e.g.
// CreateIcon("/usr/share/icons", "hicolor", "512x512/apps", "foo.png").
func (h *FSHelper) CreateIcon(base, theme, subdir, file string) (string, error) {
	path := filepath.Join(base, theme, subdir, file)
	if err := h.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}); err != nil {
		return "", err
	}
	return path, nil
}

// CreateDirectoryStructure creates a complex directory structure for testing
func (h *FSHelper) CreateDirectoryStructure(structure map[string]any) error {
	return h.createStructureRecursive("", structure)
}

// createStructureRecursive recursively creates directory structures
func (h *FSHelper) createStructureRecursive(basePath string, structure map[string]any) error {
	for name, content := range structure {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := h.WriteFile(fullPath, []byte(v)); err != nil {
				return err
			}
		case []byte:
			if err := h.WriteFile(fullPath, v); err != nil {
				return err
			}
		case map[string]any:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
			}
			if err := h.createStructureRecursive(fullPath, v); err != nil {
				return err
			}
		case nil:
			// empty directory
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create empty directory %s: %w", fullPath, err)
			}
		}
	}
	return nil
}

// FileExists checks if a file exists
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	if err != nil {
		return false
	}
	return exists
}

// WriteFile writes content to a file, creating parent directories.
func (h *FSHelper) WriteFile(path string, content []byte) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// ListFiles lists all files in a directory
func (h *FSHelper) ListFiles(path string) ([]string, error) {
	files, err := afero.ReadDir(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	fileNames := make([]string, len(files))
	for i, file := range files {
		fileNames[i] = file.Name()
	}

	return fileNames, nil
}
