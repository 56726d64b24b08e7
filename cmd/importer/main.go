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


package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ZaparooProject/zaparoo-importer/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-importer/pkg/cli"
	"github.com/ZaparooProject/zaparoo-importer/pkg/config"
	"github.com/ZaparooProject/zaparoo-importer/pkg/importer"
	"github.com/ZaparooProject/zaparoo-importer/pkg/platforms/shared"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		telemetry.Flush()
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	flag.Parse()

	platformID, err := flags.PlatformID()
	if err != nil {
		return err
	}

	if *flags.Version {
		cli.PrintVersion(os.Stdout, platformID)
		return nil
	}

	// stdout carries the records, so console logs go to stderr
	logWriters := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	cfg, err := cli.Setup(
		filepath.Join(xdg.ConfigHome, config.AppName),
		filepath.Join(xdg.StateHome, config.AppName, config.LogsDir),
		config.BaseDefaults,
		logWriters,
		*flags.Debug,
		platformID,
	)
	if err != nil {
		return err
	}
	defer telemetry.Close()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	reg, err := cli.NewRegistry(cfg, shared.DetectSandbox())
	if err != nil {
		return err
	}

	if *flags.List {
		return cli.List(os.Stdout, reg, cfg, platformID)
	}

	only := flags.SourceIDs()
	if err := cli.CheckSources(reg, only); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := cli.Import(ctx, os.Stdout, &importer.Importer{
		Registry: reg,
		Cfg:      cfg,
		Platform: platformID,
		Only:     only,
	})
	if err != nil {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		log.Warn().Msg("import interrupted")
	}

	log.Info().Int("games", report.Total()).Msg("import complete")
	return nil
}
