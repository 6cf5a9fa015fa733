package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	p := newProgress(logger)
	p.done("Aggregated 3 outputs")

	out := buf.String()
	if !strings.Contains(out, "Aggregated 3 outputs") {
		t.Errorf("log output = %q, should contain the message", out)
	}
	if !strings.Contains(out, "ms)") && !strings.Contains(out, "s)") {
		t.Errorf("log output = %q, should contain an elapsed duration", out)
	}
}
