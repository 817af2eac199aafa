package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/buildingmap/pkg/building"
)

func testLevel() building.Level {
	return building.Level{
		Vertices: []building.Vertex{
			{X: 0, Y: 0, Name: "lobby"},
			{X: 72, Y: 0},
			{X: 72, Y: 72},
		},
		Lanes: []building.Lane{
			{Start: 0, End: 1, Properties: building.LaneProperties{Bidirectional: building.P(true)}},
			{Start: 1, End: 2},
			{Start: 2, End: 9},
		},
		Walls:        []building.Wall{{Start: 0, End: 2}},
		Measurements: []building.Measurement{{Start: 0, End: 1, Properties: building.MeasurementProperties{Distance: building.P(2.5)}}},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT("L1", testLevel(), Options{})

	for _, want := range []string{
		"layout=neato;",
		`label="L1";`,
		`v0 [label="lobby", pos="0.000,0.000!", fillcolor=lightblue];`,
		`v1 [label="1", pos="1.000,0.000!"];`,
		`v2 [label="2", pos="1.000,-1.000!"];`,
		"v0 -> v1 [color=steelblue, penwidth=2, dir=both];",
		"v1 -> v2 [color=steelblue, penwidth=2];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "v9") {
		t.Error("out-of-range lane rendered")
	}
	if strings.Contains(dot, "grey40") || strings.Contains(dot, "dotted") {
		t.Error("walls or measurements rendered without being enabled")
	}
}

func TestToDOTWallsAndMeasurements(t *testing.T) {
	dot := ToDOT("L1", testLevel(), Options{Walls: true, Measurements: true, Scale: 1})

	if !strings.Contains(dot, "v0 -> v2 [dir=none, color=grey40, penwidth=4];") {
		t.Errorf("wall missing:\n%s", dot)
	}
	if !strings.Contains(dot, `v0 -> v1 [dir=none, style=dotted, color=darkorange, label="2.5"];`) {
		t.Errorf("measurement missing:\n%s", dot)
	}
	if !strings.Contains(dot, `pos="72.000,-72.000!"`) {
		t.Errorf("scale not applied:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox without viewBox changed input: %s", got)
	}
}
