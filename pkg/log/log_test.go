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
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogOperation(context.Background(), OperationEvent{
					ID:     "1",
					Kind:   "copy",
					Text:   "Copying 2 items from src to dst",
					Status: StatusStarted,
				})
				logger.LogOperation(context.Background(), OperationEvent{
					ID:     "1",
					Kind:   "copy",
					Text:   "Copied 2 items from src to dst",
					Status: StatusCompleted,
				})
			},
			wantLogs: []string{
				"• copy                 started    Copying 2 items from src to dst",
				"✓ copy                 completed  Copied 2 items from src to dst",
			},
		},
		{
			name: "log_failed_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogOperation(context.Background(), OperationEvent{
					ID:     "2",
					Kind:   "extract",
					Text:   "Extracting bundle.zip",
					Status: StatusFailed,
					Err:    errors.New("password required"),
				})
			},
			wantLogs: []string{
				"✗ extract              failed     Extracting bundle.zip: password required",
			},
		},
		{
			name: "log_summary",
			op: func(t *testing.T, logger *Logger) {
				logger.LogOperation(context.Background(), OperationEvent{Kind: "move", Text: "Moved a", Status: StatusCompleted})
				logger.LogOperation(context.Background(), OperationEvent{Kind: "move", Text: "Moving b", Status: StatusCancelled})
				logger.Summary()
			},
			wantLogs: []string{
				"✓ move                 completed  Moved a",
				"⊘ move                 cancelled  Moving b",
				"1 completed 0 failed 1 cancelled",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("trash")
			},
			wantLogs: []string{
				"fileops • trash",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)
	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestSetupWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fileops.log")

	logger := Setup(zerolog.DebugLevel, path)
	logger.Debug().Str("from", "a").Msg("copied")

	data, err := os.ReadFile(path)
	require.NoError(t, err, "log file should be created")
	assert.Contains(t, string(data), `"message":"copied"`)
	assert.Contains(t, string(data), `"from":"a"`)
}
