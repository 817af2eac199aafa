// Package nodelink renders one building level as a node-link diagram.
//
// # Overview
//
// Vertices become point-like nodes pinned at their (x, -y) coordinates so
// the diagram has the orientation of the floor-plan image. Lanes are drawn
// as arrows; bidirectional lanes get arrowheads at both ends. Walls are
// drawn as thick grey lines and measurements as dotted lines, each only
// when enabled in [Options].
//
// # Usage
//
//	dot := nodelink.ToDOT("L1", level, nodelink.Options{Walls: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The generated DOT sets layout=neato so pinned positions are honoured
// when the source is processed with external Graphviz tools as well.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
