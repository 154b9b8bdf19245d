// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger wraps zerolog with the fields used across crawl and graph builds.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	Disabled   = zerolog.Disabled
)

// Logger is a component-scoped structured logger. Nested components are
// joined with dots ("graph.resolver") into a single component field.
type Logger struct {
	zl        zerolog.Logger
	base      zerolog.Logger // zl without the component field
	component string
}

// Config holds logger configuration.
type Config struct {
	Level     Level
	Pretty    bool // console writer instead of JSON lines
	Output    io.Writer
	Component string
}

// DefaultConfig returns an info-level console logger on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  InfoLevel,
		Pretty: true,
		Output: os.Stderr,
	}
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	base := zerolog.New(out).With().Timestamp().Logger().Level(cfg.Level)
	l := &Logger{zl: base, base: base}
	if cfg.Component != "" {
		l = l.WithComponent(cfg.Component)
	}
	return l
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	nop := zerolog.Nop()
	return &Logger{zl: nop, base: nop}
}

// with adds fields to both the component-tagged and the base logger.
func (l *Logger) with(add func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{
		zl:        add(l.zl.With()).Logger(),
		base:      add(l.base.With()).Logger(),
		component: l.component,
	}
}

func (l *Logger) WithComponent(component string) *Logger {
	if l.component != "" {
		component = l.component + "." + component
	}
	return &Logger{
		zl:        l.base.With().Str("component", component).Logger(),
		base:      l.base,
		component: component,
	}
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context {
		for k, v := range fields {
			c = c.Interface(k, v)
		}
		return c
	})
}

func (l *Logger) WithURL(url string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str("url", url) })
}

func (l *Logger) WithDepth(depth int) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Int("depth", depth) })
}

// WithJob tags every line with the crawl job and its site.
func (l *Logger) WithJob(jobID, siteID string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str("job_id", jobID).Str("site_id", siteID) })
}

func (l *Logger) WithError(err error) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Err(err) })
}

func (l *Logger) Debug(msg string)                          { l.zl.Debug().Msg(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.zl.Debug().Msgf(format, args...) }
func (l *Logger) Info(msg string)                           { l.zl.Info().Msg(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.zl.Info().Msgf(format, args...) }
func (l *Logger) Warn(msg string)                           { l.zl.Warn().Msg(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.zl.Warn().Msgf(format, args...) }
func (l *Logger) Error(msg string)                          { l.zl.Error().Msg(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.zl.Error().Msgf(format, args...) }

// Event returns a zerolog event at level for field-rich log lines.
func (l *Logger) Event(level Level) *zerolog.Event {
	switch level {
	case DebugLevel:
		return l.zl.Debug()
	case WarnLevel:
		return l.zl.Warn()
	case ErrorLevel:
		return l.zl.Error()
	default:
		return l.zl.Info()
	}
}

// PageEvent starts a log line for a single page visit.
func (l *Logger) PageEvent(level Level, url string, depth int) *zerolog.Event {
	return l.Event(level).Str("url", url).Int("depth", depth)
}

// StatsEvent logs a set of counters under msg.
func (l *Logger) StatsEvent(msg string, stats map[string]interface{}) {
	ev := l.zl.Info()
	for k, v := range stats {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// ParseLevel parses a level string such as "debug" or "warn".
func ParseLevel(s string) (Level, error) {
	return zerolog.ParseLevel(s)
}
