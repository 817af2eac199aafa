package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/buildingmap/pkg/building"
)

// Options configures level diagram rendering.
type Options struct {
	// Walls includes wall segments.
	Walls bool
	// Measurements includes measurement segments.
	Measurements bool
	// Scale multiplies vertex coordinates before pinning. Zero means 1/72,
	// so one map unit per Graphviz inch point.
	Scale float64
}

func (o Options) scale() float64 {
	if o.Scale == 0 {
		return 1.0 / 72
	}
	return o.Scale
}

// ToDOT converts a level to Graphviz DOT. Vertex node IDs are "v<index>".
// References must be in range; lanes pointing outside the vertex list are
// skipped.
func ToDOT(name string, l building.Level, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	fmt.Fprintf(&buf, "  label=%q;\n", name)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.3, fixedsize=true];\n")
	buf.WriteString("\n")

	sc := opts.scale()
	for i, v := range l.Vertices {
		attrs := []string{
			fmt.Sprintf("label=%q", vertexLabel(i, v)),
			fmt.Sprintf("pos=\"%.3f,%.3f!\"", v.X*sc, -v.Y*sc),
		}
		if v.Name != "" {
			attrs = append(attrs, "fillcolor=lightblue")
		}
		fmt.Fprintf(&buf, "  v%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	n := len(l.Vertices)
	in := func(a, b int) bool { return a >= 0 && a < n && b >= 0 && b < n }

	buf.WriteString("\n")
	for _, lane := range l.Lanes {
		if !in(lane.Start, lane.End) {
			continue
		}
		attrs := []string{"color=steelblue", "penwidth=2"}
		if lane.Properties.Bidirectional.Value {
			attrs = append(attrs, "dir=both")
		}
		fmt.Fprintf(&buf, "  v%d -> v%d [%s];\n", lane.Start, lane.End, strings.Join(attrs, ", "))
	}

	if opts.Walls {
		for _, w := range l.Walls {
			if in(w.Start, w.End) {
				fmt.Fprintf(&buf, "  v%d -> v%d [dir=none, color=grey40, penwidth=4];\n", w.Start, w.End)
			}
		}
	}
	if opts.Measurements {
		for _, m := range l.Measurements {
			if in(m.Start, m.End) {
				fmt.Fprintf(&buf, "  v%d -> v%d [dir=none, style=dotted, color=darkorange, label=%q];\n",
					m.Start, m.End, strconv.FormatFloat(m.Properties.Distance.Value, 'g', 4, 64))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func vertexLabel(i int, v building.Vertex) string {
	if v.Name != "" {
		return v.Name
	}
	return strconv.Itoa(i)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// viewBox-only one so the SVG scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
