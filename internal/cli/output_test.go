package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactBase(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derive from input", "", "records.layout.json", "records"},
		{"derive strips ext only", "", "graph.json", "graph"},
		{"explicit base", "out", "records.layout.json", "out"},
		{"explicit with format ext", "out.svg", "records.layout.json", "out"},
		{"explicit with foreign ext", "out.bak", "records.layout.json", "out.bak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactBase(tt.output, tt.input)
			if got != tt.want {
				t.Errorf("artifactBase(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteArtifactsSingleFormat(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "diagram.svg")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"svg": []byte("<svg/>")},
		formats:   []string{"svg"},
		input:     "x.layout.json",
		output:    out,
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("output = %q, want %q", data, "<svg/>")
	}
}

func TestWriteArtifactsMultipleFormats(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "diagram")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{
			"svg": []byte("<svg/>"),
			"dot": []byte("digraph utxo {}"),
		},
		formats: []string{"svg", "dot"},
		input:   "x.layout.json",
		output:  base,
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	for _, ext := range []string{".svg", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing artifact %s: %v", base+ext, err)
		}
	}
}
