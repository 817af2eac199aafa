// Package render provides visualizations of building maps.
//
// The [nodelink] subpackage draws the lane, wall and measurement topology of
// a single level as a Graphviz diagram with vertices pinned at their
// coordinates.
//
//	dot := nodelink.ToDOT("L1", m.Levels["L1"], nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package render
