package save

import (
	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
)

// Rekey maps a level's live vertex identifiers to dense persisted indices.
type Rekey map[int]int

// Lookup returns the dense index for a live identifier.
func (r Rekey) Lookup(id int) (int, bool) {
	n, ok := r[id]
	return n, ok
}

// Identity reports whether the mapping leaves every identifier unchanged.
func (r Rekey) Identity() bool {
	for from, to := range r {
		if from != to {
			return false
		}
	}
	return true
}

// VertexEntry is one live vertex as read from the scene, in traversal order.
type VertexEntry struct {
	ID     int
	Vertex building.Vertex
}

// RekeyVertices assigns dense indices to entries in the order given and
// returns the persisted vertex list together with the mapping from live
// identifiers. A live identifier that appears twice is an integrity error.
func RekeyVertices(level string, entries []VertexEntry) ([]building.Vertex, Rekey, error) {
	vertices := make([]building.Vertex, 0, len(entries))
	rk := make(Rekey, len(entries))
	for _, e := range entries {
		if _, dup := rk[e.ID]; dup {
			return nil, nil, bmerrors.New(bmerrors.ErrCodeDanglingReference,
				"level %q: vertex identifier %d is held by more than one vertex", level, e.ID)
		}
		rk[e.ID] = len(vertices)
		vertices = append(vertices, e.Vertex)
	}
	return vertices, rk, nil
}
