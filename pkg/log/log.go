// Copyright 2025 walteh LLC
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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 🎨 Display configuration
const (
	opIndent    = 4  // spaces to indent operation lines
	kindWidth   = 20 // Width for operation kind
	statusWidth = 10 // Width for status text
)

// 🚦 Status is the lifecycle stage of an operation line
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// 🎯 OperationEvent represents an operation lifecycle change for logging
type OperationEvent struct {
	ID     string // Operation id
	Kind   string // Operation kind (copy/move/extract...)
	Text   string // Human readable status text
	Status Status // Lifecycle stage
	Err    error  // Failure cause, set for StatusFailed
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	counts  map[Status]int
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		counts:  map[Status]int{},
	}
}

// ⚙️ Setup builds the root logger: a console writer on stderr and, when
// logFile is set, a rolling JSON log file
func Setup(level zerolog.Level, logFile string) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if logFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatOperation formats an operation event for display
func (l *Logger) formatOperation(ev OperationEvent) string {
	var symbol rune
	var symbolColor color.Attribute
	switch ev.Status {
	case StatusCompleted:
		symbol = '✓'
		symbolColor = color.FgGreen
	case StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case StatusCancelled:
		symbol = '⊘'
		symbolColor = color.FgYellow
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	text := ev.Text
	if ev.Status == StatusFailed && ev.Err != nil {
		text = fmt.Sprintf("%s: %v", text, ev.Err)
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", opIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		color.New(color.FgBlue).Sprint(fmt.Sprintf("%-*s", kindWidth, ev.Kind)),
		fmt.Sprintf("%-*s", statusWidth, ev.Status),
		text)
}

// 📝 LogOperation prints an operation event and records it
func (l *Logger) LogOperation(ctx context.Context, ev OperationEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[ev.Status]++
	fmt.Fprintln(l.console, l.formatOperation(ev))

	event := l.zlog.Info()
	if ev.Status == StatusFailed {
		event = l.zlog.Error().Err(ev.Err)
	}
	event.
		Str("id", ev.ID).
		Str("kind", ev.Kind).
		Str("status", string(ev.Status)).
		Msg(ev.Text)
}

// 📊 Summary prints how many operations ended in each state
func (l *Logger) Summary() {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s %s %s\n",
		color.New(color.FgGreen).Sprintf("%d completed", l.counts[StatusCompleted]),
		color.New(color.FgRed).Sprintf("%d failed", l.counts[StatusFailed]),
		color.New(color.FgYellow).Sprintf("%d cancelled", l.counts[StatusCancelled]))
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("fileops")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
