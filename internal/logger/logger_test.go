package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPretty(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Writer: buf, Format: FormatPretty, Level: level, NoColor: true})
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "production", true},
		{"development uses pretty", "development", false},
		{"empty uses pretty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Environment: tt.environment, Writer: &buf}).Info("post created", "post_id", 7)

			var record map[string]any
			err := json.Unmarshal(buf.Bytes(), &record)
			if tt.wantJSON {
				require.NoError(t, err)
				assert.Equal(t, "post created", record["msg"])
				assert.Equal(t, float64(7), record["post_id"])
			} else {
				assert.Error(t, err)
				assert.Contains(t, buf.String(), "post_id=7")
			}
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: FormatJSON, Environment: "development", Writer: &buf}).Info("test")

	assert.Contains(t, buf.String(), `"msg":"test"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	newPretty(&buf, slog.LevelInfo).Info("post updated",
		"post_id", 3,
		"text_changed", true,
		"message", "two words",
	)

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.NotContains(t, line, "\033[")
	assert.Contains(t, line, " INF post updated")
	assert.Contains(t, line, "post_id=3")
	assert.Contains(t, line, "text_changed=true")
	assert.Contains(t, line, `message="two words"`)
}

func TestPrettyHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Format: FormatPretty}).Warn("careful")

	assert.Contains(t, buf.String(), colorYellow+"WRN"+colorReset)
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newPretty(&buf, slog.LevelWarn)

	l.Info("hidden")
	l.Debug("hidden")
	l.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "ERR shown")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	l := newPretty(&buf, slog.LevelInfo)

	l.With("request_id", "abc").
		WithGroup("post").
		Info("saved", "id", 9, slog.Group("counts", "likes", 2))

	line := buf.String()
	assert.Contains(t, line, "request_id=abc")
	assert.Contains(t, line, "post.id=9")
	assert.Contains(t, line, "post.counts.likes=2")
}

func TestWithErrorAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newPretty(&buf, slog.LevelInfo)

	l.WithComponent("store").WithError(errors.New("disk full")).Error("write failed")
	assert.Contains(t, buf.String(), "component=store")
	assert.Contains(t, buf.String(), `error="disk full"`)

	assert.Same(t, l, l.WithError(nil))
}

func TestPrettyHandler_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	l := newPretty(&buf, slog.LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				l.Info("tick", "n", j)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 200)
}
