package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/utxoscope/pkg/pipeline"
)

// artifactWriteParams bundles the inputs for writing rendered artifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte // format → rendered bytes
	formats   []string          // requested formats, in order
	input     string            // input path the base name derives from
	output    string            // explicit output path or base, may be empty
	cacheHit  bool
	nextStep  string // suggested follow-up command, may be empty
}

// writeArtifacts writes each rendered format to its own file and prints a
// summary. With a single format the output path is used as-is; with multiple
// formats it is treated as a base path and the format extension is appended.
func writeArtifacts(p artifactWriteParams) error {
	base := artifactBase(p.output, p.input)

	printSuccess("Render complete")
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}

		path := base + "." + format
		if p.output != "" && len(p.formats) == 1 {
			path = p.output
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	status := iconFresh
	if p.cacheHit {
		status = iconCached
	}
	printDetail("%d format(s) · %s", len(p.artifacts), status)

	if p.nextStep != "" {
		printNewline()
		printNextStep("Open", p.nextStep)
	}
	return nil
}

// artifactBase derives the base output path from the output and input paths.
// An explicit output keeps its path with any known format extension stripped;
// otherwise the input's extension is stripped.
func artifactBase(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
