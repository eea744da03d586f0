package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureDefault(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	prev := Default()
	t.Cleanup(func() {
		mu.Lock()
		defaultLogger = prev
		mu.Unlock()
	})

	var buf bytes.Buffer
	cfg.Output = &buf
	Init(cfg)
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestInfo_WritesStructuredFields(t *testing.T) {
	buf := captureDefault(t, Config{Level: "info", Format: "json"})

	Info("batch uploaded", "audience_id", "123", "batch_seq", 2, "last", true, "err", errors.New("boom"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "batch uploaded", entry["message"])
	assert.Equal(t, "123", entry["audience_id"])
	assert.Equal(t, float64(2), entry["batch_seq"])
	assert.Equal(t, true, entry["last"])
	assert.Equal(t, "boom", entry["err"])
}

func TestTimestampIsRFC3339(t *testing.T) {
	buf := captureDefault(t, Config{Level: "info", Format: "json"})

	Info("tick")

	entry := decodeLine(t, buf)
	ts, ok := entry["time"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestInit_ConcurrentWithLogging(t *testing.T) {
	captureDefault(t, Config{Level: "info", Format: "json"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Init(Config{Level: "debug", Format: "json", Output: io.Discard})
		}()
		go func() {
			defer wg.Done()
			Info("concurrent", "n", 1)
		}()
	}
	wg.Wait()
}

func TestLevelFiltering(t *testing.T) {
	buf := captureDefault(t, Config{Level: "warn", Format: "json"})

	Info("dropped")
	Debug("dropped too")
	assert.Empty(t, buf.String())

	Error("kept")
	entry := decodeLine(t, buf)
	assert.Equal(t, "error", entry["level"])
}

func TestRedaction(t *testing.T) {
	buf := captureDefault(t, Config{Level: "debug", Format: "json", RedactPII: true})

	Info("customer", "email", "john.doe@example.com", "phone", "+1 555 123 4567", "note", "contact jane@example.org")

	entry := decodeLine(t, buf)
	assert.Equal(t, "jo***@example.com", entry["email"])
	assert.Equal(t, "***67", entry["phone"])
	assert.Equal(t, "contact ja***@example.org", entry["note"])
}

func TestRedactionDisabled(t *testing.T) {
	buf := captureDefault(t, Config{Level: "info", Format: "json", RedactPII: false})

	Info("customer", "email", "john.doe@example.com")

	entry := decodeLine(t, buf)
	assert.Equal(t, "john.doe@example.com", entry["email"])
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}

func TestRedactPhone(t *testing.T) {
	assert.Equal(t, "***67", RedactPhone("(555) 123-4567"))
	assert.Equal(t, "***", RedactPhone("12"))
	assert.Equal(t, "***", RedactPhone(""))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("DEBUG").String())
	assert.Equal(t, "warn", ParseLevel("warning").String())
	assert.Equal(t, "error", ParseLevel("error").String())
	assert.Equal(t, "info", ParseLevel("bogus").String())
}
