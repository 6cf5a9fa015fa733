package cli

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/utxoscope/pkg/pipeline"
)

func testCLI(t *testing.T) *CLI {
	t.Helper()
	// Isolate from any config file on the host.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return New(io.Discard, LogInfo)
}

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	os.Unsetenv("XDG_CACHE_HOME")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".cache", appName)
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	want := filepath.Join("/tmp/custom-cache", appName)
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestConfigPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}

	want := filepath.Join("/tmp/custom-config", appName, "config.toml")
	if path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg,pdf,json", []string{"svg", "pdf", "json"}},
	}

	for _, tt := range tests {
		got := parseFormats(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConfigApply(t *testing.T) {
	cfg := Config{
		Endpoint: "https://mempool.space/api",
		VizType:  "timeline",
		Width:    1200,
		Formats:  []string{"svg", "png"},
		Legend:   true,
	}

	var opts pipeline.Options
	cfg.Apply(&opts)

	if opts.Endpoint != cfg.Endpoint {
		t.Errorf("Endpoint = %q, want %q", opts.Endpoint, cfg.Endpoint)
	}
	if opts.VizType != "timeline" {
		t.Errorf("VizType = %q, want timeline", opts.VizType)
	}
	if opts.Width != 1200 {
		t.Errorf("Width = %v, want 1200", opts.Width)
	}
	if !reflect.DeepEqual(opts.Formats, cfg.Formats) {
		t.Errorf("Formats = %v, want %v", opts.Formats, cfg.Formats)
	}
	if !opts.Legend {
		t.Error("Legend should be set")
	}
	if opts.Labels {
		t.Error("Labels should stay unset")
	}
}

func TestConfigApplyZeroLeavesDefaults(t *testing.T) {
	var opts pipeline.Options
	Config{}.Apply(&opts)
	opts.SetLayoutDefaults()

	if opts.VizType != pipeline.DefaultVizType {
		t.Errorf("VizType = %q, want default %q", opts.VizType, pipeline.DefaultVizType)
	}
	if opts.Width != pipeline.DefaultWidth {
		t.Errorf("Width = %v, want default %v", opts.Width, pipeline.DefaultWidth)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "viz_type = \"force\"\nseed = 7\nformats = [\"svg\", \"pdf\"]\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig()
	if cfg.VizType != "force" {
		t.Errorf("VizType = %q, want force", cfg.VizType)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if len(cfg.Formats) != 2 {
		t.Errorf("Formats = %v, want 2 entries", cfg.Formats)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := LoadConfig()
	if !reflect.DeepEqual(cfg, Config{}) {
		t.Errorf("LoadConfig() = %+v, want zero config", cfg)
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	c := testCLI(t)
	root := c.RootCommand()

	want := []string{"fetch", "aggregate", "layout", "visualize", "render", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestRootCommandUse(t *testing.T) {
	c := testCLI(t)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}
	if !strings.Contains(root.Short, "UTXO") {
		t.Errorf("Short = %q, should mention UTXO", root.Short)
	}
}

func TestNewOptionsSeedsDefaults(t *testing.T) {
	c := testCLI(t)
	opts := c.newOptions()

	if opts.VizType != pipeline.DefaultVizType {
		t.Errorf("VizType = %q, want %q", opts.VizType, pipeline.DefaultVizType)
	}
	if len(opts.Formats) == 0 {
		t.Error("Formats should default to non-empty")
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}
