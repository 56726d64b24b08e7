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


// Package telemetry provides opt-in error reporting via Sentry.
// All PII is stripped before transmission.
package telemetry

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-importer/pkg/helpers"
	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	flushTimeout = 2 * time.Second
	sendTimeout  = 30 * time.Second
)

var (
	enabled      bool
	sentryWriter *sentryzerolog.Writer
	closeOnce    sync.Once

	// Patterns to strip usernames from file paths
	homePathRe    = regexp.MustCompile(`(?i)/home/[^/]+/`)
	usersPathRe   = regexp.MustCompile(`(?i)/Users/[^/]+/`)
	windowsUserRe = regexp.MustCompile(`(?i)[a-zA-Z]:\\Users\\[^\\]+\\`)
)

// Options configures error reporting. Reporting stays off unless Enabled is
// set and a DSN is given.
type Options struct {
	DSN        string
	AppVersion string
	PlatformID string
	Enabled    bool
}

// Init initializes Sentry error reporting with zerolog integration. Only
// error level and above log events are reported.
func Init(opts Options) error {
	if !opts.Enabled || opts.DSN == "" {
		log.Debug().Msg("error reporting disabled")
		return nil
	}

	home, _ := os.UserHomeDir()
	sc := newScrubber(home)

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Release:          "zaparoo-importer@" + opts.AppVersion,
		Environment:      opts.PlatformID,
		AttachStacktrace: true,
		// Privacy: explicitly disable PII collection
		SendDefaultPII: false,
		ServerName:     "",
		MaxBreadcrumbs: 0,
		HTTPClient:     &http.Client{Timeout: sendTimeout},
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return sc.sanitizeEvent(event)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("platform", opts.PlatformID)
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
	})

	sentryWriter, err = sentryzerolog.NewWithHub(sentry.CurrentHub(), sentryzerolog.Options{
		Levels:          []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		FlushTimeout:    flushTimeout,
		WithBreadcrumbs: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry zerolog writer: %w", err)
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(
		helpers.LogWriter(),
		sentryWriter,
	)).With().Timestamp().Caller().Logger()

	enabled = true
	log.Info().Msg("error reporting enabled")
	return nil
}

// Close flushes pending events and shuts down Sentry.
// Safe to call multiple times.
func Close() {
	if !enabled {
		return
	}
	closeOnce.Do(func() {
		_ = sentryWriter.Close()
		sentry.Flush(flushTimeout)
	})
}

// Flush ensures all pending events are sent to Sentry.
// Call this before os.Exit to ensure error events are transmitted.
func Flush() {
	if !enabled {
		return
	}
	sentry.Flush(flushTimeout)
}

// Enabled returns whether telemetry is enabled.
func Enabled() bool {
	return enabled
}

// fieldRule says what happens to a log field before an event is sent.
type fieldRule int

const (
	// scrubField keeps the field with user paths removed.
	scrubField fieldRule = iota
	// tagField moves the field to a searchable tag.
	tagField
	// gameField keeps only the source prefix of a game ID.
	gameField
	// dropField removes the field.
	dropField
)

// fieldRules covers the fields the importer logs. Anything else is scrubbed.
var fieldRules = map[string]fieldRule{
	"run":      tagField,
	"source":   tagField,
	"platform": tagField,
	"game":     gameField,
	"library":  dropField,
	"icon":     dropField,
	"command":  dropField,
}

// scrubber removes personal data from events. Game IDs and library contents
// say what a user owns, so only the collector they came from is kept.
type scrubber struct {
	homeRe *regexp.Regexp
}

func newScrubber(home string) *scrubber {
	home = strings.TrimRight(home, `/\`)
	if home == "" {
		return &scrubber{}
	}
	return &scrubber{homeRe: regexp.MustCompile(regexp.QuoteMeta(home) + `([/\\]|$)`)}
}

// sanitizeEvent removes PII from Sentry events before sending.
func (sc *scrubber) sanitizeEvent(event *sentry.Event) *sentry.Event {
	// SDK may populate the hostname despite ServerName: ""
	event.ServerName = ""

	for i := range event.Exception {
		event.Exception[i].Value = sc.sanitizePath(event.Exception[i].Value)
		if event.Exception[i].Stacktrace != nil {
			for j := range event.Exception[i].Stacktrace.Frames {
				frame := &event.Exception[i].Stacktrace.Frames[j]
				frame.AbsPath = sc.sanitizePath(frame.AbsPath)
				frame.Filename = sc.sanitizePath(frame.Filename)
			}
		}
	}

	event.Message = sc.sanitizePath(event.Message)

	for k, v := range event.Extra {
		switch fieldRules[k] {
		case tagField:
			if event.Tags == nil {
				event.Tags = make(map[string]string)
			}
			event.Tags[k] = sc.sanitizePath(fmt.Sprint(v))
			delete(event.Extra, k)
		case gameField:
			event.Extra[k] = redactGameID(fmt.Sprint(v))
		case dropField:
			delete(event.Extra, k)
		case scrubField:
			if s, ok := v.(string); ok {
				event.Extra[k] = sc.sanitizePath(s)
			}
		}
	}

	for k, v := range event.Tags {
		event.Tags[k] = sc.sanitizePath(v)
	}

	return event
}

// redactGameID turns "steam_440" into "steam_<game>".
func redactGameID(id string) string {
	source, _, ok := strings.Cut(id, "_")
	if !ok || source == "" {
		return "<game>"
	}
	return source + "_<game>"
}

// sanitizePath removes usernames from file paths. Game libraries live under
// home directories, so collector errors nearly always contain one. The
// current user's home is replaced first since it may be anywhere.
func (sc *scrubber) sanitizePath(path string) string {
	if path == "" {
		return path
	}

	result := path
	if sc.homeRe != nil {
		result = sc.homeRe.ReplaceAllString(result, "~${1}")
	}
	result = homePathRe.ReplaceAllString(result, "/home/<user>/")
	result = usersPathRe.ReplaceAllString(result, "/Users/<user>/")
	result = windowsUserRe.ReplaceAllString(result, "C:\\Users\\<user>\\")

	return result
}
