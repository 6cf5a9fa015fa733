package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/utxoscope/pkg/pipeline"
)

// Config holds user defaults loaded from the TOML config file. Every field
// is optional; zero values fall through to the pipeline defaults, and
// command-line flags override config values.
//
// Example ~/.config/utxoscope/config.toml:
//
//	endpoint = "https://blockstream.info/api"
//	viz_type = "timeline"
//	width = 1200
//	height = 800
//	formats = ["svg", "png"]
//	labels = true
//	legend = true
type Config struct {
	Endpoint string   `toml:"endpoint"`
	VizType  string   `toml:"viz_type"`
	Width    float64  `toml:"width"`
	Height   float64  `toml:"height"`
	Unit     string   `toml:"unit"`
	Seed     uint64   `toml:"seed"`
	MaxNodes int      `toml:"max_nodes"`
	Formats  []string `toml:"formats"`
	Engine   string   `toml:"engine"`
	Labels   bool     `toml:"labels"`
	Legend   bool     `toml:"legend"`
}

// LoadConfig reads the user's config file. A missing or unreadable file
// yields the zero config; a malformed file is ignored the same way rather
// than blocking every command.
func LoadConfig() Config {
	path, err := configPath()
	if err != nil {
		return Config{}
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// Apply copies the config's non-zero values onto pipeline options.
func (c Config) Apply(opts *pipeline.Options) {
	if c.Endpoint != "" {
		opts.Endpoint = c.Endpoint
	}
	if c.VizType != "" {
		opts.VizType = c.VizType
	}
	if c.Width > 0 {
		opts.Width = c.Width
	}
	if c.Height > 0 {
		opts.Height = c.Height
	}
	if c.Unit != "" {
		opts.Unit = c.Unit
	}
	if c.Seed != 0 {
		opts.Seed = c.Seed
	}
	if c.MaxNodes > 0 {
		opts.MaxNodes = c.MaxNodes
	}
	if len(c.Formats) > 0 {
		opts.Formats = append([]string(nil), c.Formats...)
	}
	if c.Engine != "" {
		opts.Engine = c.Engine
	}
	if c.Labels {
		opts.Labels = true
	}
	if c.Legend {
		opts.Legend = true
	}
}

// configPath returns the config file path using XDG standard
// (~/.config/utxoscope/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
