// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/technoborsch/easyview/internal/logging"
)

// watermillLogger routes Watermill's internal logging through the
// application logger. Trace output is dropped.
type watermillLogger struct {
	fields watermill.LogFields
}

// NewWatermillLogger creates a watermill.LoggerAdapter backed by the
// global zerolog logger.
func NewWatermillLogger() watermill.LoggerAdapter {
	return &watermillLogger{}
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	event := logging.Error().Err(err)
	for k, v := range l.fields.Add(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	event := logging.Debug()
	for k, v := range l.fields.Add(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	event := logging.Debug()
	for k, v := range l.fields.Add(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func (l *watermillLogger) Trace(string, watermill.LogFields) {}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{fields: l.fields.Add(fields)}
}
