// Package scene holds the live, editable building map.
//
// # Overview
//
// A [Scene] is an explicit entity tree with typed component tables:
//
//	root (map name, crowd sim)
//	└── level (name, drawing/elevation/offsets, vertex bookkeeping)
//	    ├── vertex   (live identifier, geometry)
//	    ├── lane     (pair of live vertex identifiers)
//	    ├── wall     (pair of live vertex identifiers)
//	    ├── measurement
//	    └── model
//
// Children of a level are interleaved and kept in insertion order; that
// order is the traversal order used when a level is saved.
//
// # Vertex identifiers
//
// Each level owns a [LevelVertices] bookkeeping table that assigns live
// vertex identifiers. Identifiers are level-scoped, start at zero and are
// never handed out twice by the same table, so deleting vertices leaves
// gaps. Dependent entities (lanes, walls, measurements) store live
// identifiers, not entity handles. [Scene.Relabel] replaces a level's
// identifiers with a new assignment in one step; the save pass uses it to
// make the live scene match what was written.
//
// # Loading
//
// [Scene.Spawn] builds a root and its levels from a [building.Map]. Vertex
// identifiers of a freshly spawned level equal their document indices.
//
// # Concurrency
//
// A Scene is not safe for concurrent use. Callers that edit and save from
// different goroutines must serialise access, see the save package's
// Scheduler.
//
// [building.Map]: github.com/matzehuels/buildingmap/pkg/building.Map
package scene
