/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Package util carries the logging sinks a host application supplies to the
 * parser framework. Every trace is a context lifecycle event or a rollback,
 * emitted as plain strings through whichever sink Settings.Logger names.
 */
package util

import (
	"fmt"
	"log"

	"github.com/krotik/common/datautil"
)

// Logger is the sink the parser framework writes optional debug tracing to
// (context start/end/delete, backup/rollback). Three levels cover
// everything this module emits.
type Logger interface {
	LogError(v ...interface{})
	LogInfo(v ...interface{})
	LogDebug(v ...interface{})
}

// MemoryLogger collects log messages in a RingBuffer in memory -- the
// logger parser_test.go wires into Settings.Logger to assert on trace
// content without touching stdout.
type MemoryLogger struct {
	*datautil.RingBuffer
}

// NewMemoryLogger returns a new memory logger instance holding at most size
// messages, oldest evicted first.
func NewMemoryLogger(size int) *MemoryLogger {
	return &MemoryLogger{datautil.NewRingBuffer(size)}
}

func (ml *MemoryLogger) LogError(m ...interface{}) {
	ml.RingBuffer.Add(fmt.Sprintf("error: %v", fmt.Sprint(m...)))
}

func (ml *MemoryLogger) LogInfo(m ...interface{}) {
	ml.RingBuffer.Add(fmt.Sprint(m...))
}

func (ml *MemoryLogger) LogDebug(m ...interface{}) {
	ml.RingBuffer.Add(fmt.Sprintf("debug: %v", fmt.Sprint(m...)))
}

// Slice returns the contents of the current log as a slice, oldest first.
func (ml *MemoryLogger) Slice() []string {
	sl := ml.RingBuffer.Slice()
	ret := make([]string, len(sl))
	for i, lm := range sl {
		ret[i] = lm.(string)
	}
	return ret
}

// Reset clears the current log.
func (ml *MemoryLogger) Reset() {
	ml.RingBuffer.Reset()
}

// Size returns the number of messages currently held.
func (ml *MemoryLogger) Size() int {
	return ml.RingBuffer.Size()
}

// String returns the current log as a newline-joined string.
func (ml *MemoryLogger) String() string {
	return ml.RingBuffer.String()
}

// StdOutLogger writes log messages to stdout via the standard log package --
// the logger a host application reaches for when it just wants to see
// traces on a console rather than inspect them programmatically.
type StdOutLogger struct {
	stdlog func(v ...interface{})
}

// NewStdOutLogger returns a stdout logger instance.
func NewStdOutLogger() *StdOutLogger {
	return &StdOutLogger{log.Print}
}

func (sl *StdOutLogger) LogError(m ...interface{}) {
	sl.stdlog(fmt.Sprintf("error: %v", fmt.Sprint(m...)))
}

func (sl *StdOutLogger) LogInfo(m ...interface{}) {
	sl.stdlog(fmt.Sprint(m...))
}

func (sl *StdOutLogger) LogDebug(m ...interface{}) {
	sl.stdlog(fmt.Sprintf("debug: %v", fmt.Sprint(m...)))
}

// NullLogger discards every message -- Settings' default when a caller
// doesn't supply a Logger, so tracing costs nothing when nobody's watching.
type NullLogger struct{}

// NewNullLogger returns a null logger instance.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (nl *NullLogger) LogError(m ...interface{}) {}
func (nl *NullLogger) LogInfo(m ...interface{})  {}
func (nl *NullLogger) LogDebug(m ...interface{}) {}
