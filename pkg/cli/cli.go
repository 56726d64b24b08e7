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


// Package cli holds the command line front end shared by the importer
// binaries: flags, environment setup and output.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ZaparooProject/zaparoo-importer/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-importer/pkg/config"
	"github.com/ZaparooProject/zaparoo-importer/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/ids"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/shared"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/desktop"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/heroic"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/lutris"
	"github.com/ZaparooProject/zaparoo-importer/pkg/sources/steam"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownSource   = errors.New("unknown source")
	ErrUnknownPlatform = errors.New("unknown platform")
)

type Flags struct {
	Version  *bool
	List     *bool
	Debug    *bool
	Source   *string
	Platform *string
}

// SetupFlags defines all importer flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		List: fs.Bool(
			"list",
			false,
			"list sources available on this platform and exit",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging",
		),
		Source: fs.String(
			"source",
			"",
			"comma separated source IDs to import from (default: all)",
		),
		Platform: fs.String(
			"platform",
			"",
			"platform ID to select sources for (default: current)",
		),
	}
}

// SourceIDs returns the trimmed, de-duplicated IDs given to -source.
func (f *Flags) SourceIDs() []string {
	if f.Source == nil {
		return nil
	}
	var out []string
	for id := range strings.SplitSeq(*f.Source, ",") {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// PlatformID returns the -platform value, or the platform the binary was
// built for.
func (f *Flags) PlatformID() (string, error) {
	if f.Platform == nil || *f.Platform == "" {
		if id := ids.Current(); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownPlatform, "current")
	}
	id := strings.ToLower(*f.Platform)
	if !slices.Contains([]string{ids.Linux, ids.Mac, ids.Windows}, id) {
		return "", fmt.Errorf("%w: %s", ErrUnknownPlatform, *f.Platform)
	}
	return id, nil
}

// CheckSources returns an error naming the first ID which isn't registered.
func CheckSources(reg *sources.Registry, srcIDs []string) error {
	for _, id := range srcIDs {
		if _, ok := reg.Get(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSource, id)
		}
	}
	return nil
}

// Setup initializes logging and the user config, then opt-in error
// reporting. Debug logging is on if either debug or the config asks for it.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	configDir string,
	logDir string,
	defaults config.Values,
	writers []io.Writer,
	debug bool,
	platformID string,
) (*config.Instance, error) {
	err := helpers.InitLogging(logDir, writers)
	if err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(configDir, defaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	helpers.SetDebugLogging(debug || cfg.DebugLogging())

	dsn, enabled := cfg.ErrorReporting()
	if err := telemetry.Init(telemetry.Options{
		DSN:        dsn,
		Enabled:    enabled,
		AppVersion: config.AppVersion,
		PlatformID: platformID,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}

// NewRegistry registers every built-in source, configured from cfg.
func NewRegistry(cfg *config.Instance, sandbox shared.Sandbox) (*sources.Registry, error) {
	reg, err := sources.NewRegistry(
		desktop.New(cfg, sandbox),
		lutris.New(cfg),
		steam.New(cfg),
		heroic.New(cfg),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register sources: %w", err)
	}
	return reg, nil
}

// PrintVersion writes the version banner.
func PrintVersion(w io.Writer, platformID string) {
	_, _ = fmt.Fprintf(w, "Zaparoo Importer v%s (%s)\n", config.AppVersion, platformID)
}
