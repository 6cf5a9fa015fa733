package pipeline

import (
	"context"

	"github.com/matzehuels/utxoscope/pkg/errors"
	"github.com/matzehuels/utxoscope/pkg/layout"
	"github.com/matzehuels/utxoscope/pkg/render"
	"github.com/matzehuels/utxoscope/pkg/render/dot"
	"github.com/matzehuels/utxoscope/pkg/render/svg"
)

// pngScale is the rasterization factor for PNG output.
const pngScale = 2.0

// RenderFromLayout generates output artifacts in the requested formats.
//
// SVG and PNG honor opts.Engine: the native renderer draws geometry
// directly, the graphviz engine routes node layouts through Graphviz with
// pinned positions. Treemaps and PDF always use the native path.
func RenderFromLayout(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	useGraphviz := opts.Engine == EngineGraphviz && !l.IsTreemap()

	// The DOT translation backs both the dot format and the graphviz engine.
	var dotSrc string
	if useGraphviz || hasFormat(opts.Formats, FormatDOT) {
		s, err := dot.ToDOT(l)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "dot translation")
		}
		dotSrc = s
	}

	svgBytes := func() []byte { return svg.Render(l, svgOptions(opts)...) }

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			if useGraphviz {
				data, err = dot.RenderSVG(ctx, dotSrc)
			} else {
				data = svgBytes()
			}
		case FormatPNG:
			if useGraphviz {
				data, err = dot.RenderPNG(ctx, dotSrc)
			} else {
				data, err = render.ToPNG(svgBytes(), pngScale)
			}
		case FormatPDF:
			data, err = render.ToPDF(svgBytes())
		case FormatDOT:
			data = []byte(dotSrc)
		case FormatJSON:
			data, err = layout.MarshalLayout(l)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// svgOptions builds native-renderer options from pipeline options.
func svgOptions(opts Options) []svg.Option {
	var svgOpts []svg.Option
	if opts.Title != "" {
		svgOpts = append(svgOpts, svg.WithTitle(opts.Title))
	}
	if opts.Labels {
		svgOpts = append(svgOpts, svg.WithLabels())
	}
	if opts.Legend {
		svgOpts = append(svgOpts, svg.WithLegend())
	}
	return svgOpts
}

func hasFormat(formats []string, want string) bool {
	for _, f := range formats {
		if f == want {
			return true
		}
	}
	return false
}
