package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestHumanCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{950, "950"},
		{1000, "1.0k"},
		{12345, "12.3k"},
		{999999, "1000.0k"},
		{4200000, "4.2M"},
	}

	for _, tt := range tests {
		if got := humanCount(tt.n); got != tt.want {
			t.Errorf("humanCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestSearchLoggerHeartbeatThrottle(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	sl := newSearchLogger(logger, nil)
	sl.onProgress(10000, 100)

	if buf.Len() != 0 {
		t.Errorf("onProgress right after start should not log, got %q", buf.String())
	}

	// Pretend the last heartbeat was a while ago.
	sl.lastLog = time.Now().Add(-11 * time.Second)
	sl.onProgress(20000, 200)

	if !bytes.Contains(buf.Bytes(), []byte("Searching")) {
		t.Errorf("onProgress after heartbeat interval should log, got %q", buf.String())
	}
	if sl.evaluated != 20000 || sl.culled != 200 {
		t.Errorf("counters = (%d, %d), want (20000, 200)", sl.evaluated, sl.culled)
	}
}

func TestSearchLoggerUpdatesSpinner(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	spinner := newSpinner("Searching...")
	sl := newSearchLogger(logger, spinner)
	sl.onProgress(12345, 42)

	spinner.mu.Lock()
	message := spinner.message
	spinner.mu.Unlock()

	if !bytes.Contains([]byte(message), []byte("12.3k")) {
		t.Errorf("spinner message = %q, want node count in it", message)
	}
}
