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


// Package launchcmd detects which freedesktop "open this application"
// command is available on the host.
package launchcmd

import (
	"context"
	"strings"

	"github.com/ZaparooProject/zaparoo-importer/pkg/helpers/command"
	"github.com/alessio/shellescape"
	"github.com/rs/zerolog/log"
)

const (
	shellPath    = "/bin/sh"
	flatpakSpawn = "flatpak-spawn"
)

// Command is a launch command and how it addresses applications.
type Command struct {
	// Name is the command line prefix, e.g. "gio launch".
	Name string
	// ByID is true if the command takes a bare application ID (the desktop
	// file name without extension), false if it takes a desktop file path.
	ByID bool
}

// Executable returns the full shell-safe invocation for target.
func (c Command) Executable(target string) string {
	return c.Name + " " + shellescape.Quote(target)
}

// Target picks the argument to pass for a desktop file: its path, or its
// application ID when the command resolves IDs.
func (c Command) Target(path, id string) string {
	if c.ByID {
		return id
	}
	return path
}

type candidate struct {
	check string
	cmd   Command
}

// candidates are probed in order. The last entry is also the fallback.
var candidates = []candidate{
	{check: "gio help launch", cmd: Command{Name: "gio launch", ByID: false}},
	{check: "type gtk4-launch", cmd: Command{Name: "gtk4-launch", ByID: true}},
	{check: "type gtk-launch", cmd: Command{Name: "gtk-launch", ByID: true}},
}

// Fallback is returned when no candidate could be found on the host.
func Fallback() Command {
	return candidates[len(candidates)-1].cmd
}

// Prober checks the host for launch commands.
type Prober struct {
	Exec command.Executor
	// Sandboxed relays each check to the host through flatpak-spawn.
	Sandboxed bool
}

// Probe returns the first available launch command. It never fails: if no
// command is detected the fallback is returned. Callers should probe once
// per pass and reuse the result.
func (p Prober) Probe(ctx context.Context) Command {
	exec := p.Exec
	if exec == nil {
		exec = &command.RealExecutor{}
	}

	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		name, args := p.wrap(c.check)
		if err := exec.Run(ctx, name, args...); err != nil {
			log.Debug().Err(err).Str("check", c.check).Msg("launch command not available")
			continue
		}
		log.Debug().
			Str("command", c.cmd.Name).
			Bool("sandboxed", p.Sandboxed).
			Msg("detected launch command")
		return c.cmd
	}

	fb := Fallback()
	log.Warn().Str("command", fb.Name).Msg("no launch command detected, using fallback")
	return fb
}

func (p Prober) wrap(check string) (name string, args []string) {
	// discard output so probes stay quiet on the host
	script := check + " >/dev/null 2>&1"
	if p.Sandboxed {
		return flatpakSpawn, []string{"--host", shellPath, "-c", script}
	}
	return shellPath, []string{"-c", script}
}

// StemID returns the application ID of a desktop file name.
func StemID(fileName string) string {
	return strings.TrimSuffix(fileName, ".desktop")
}
