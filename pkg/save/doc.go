// Package save turns a live [scene.Scene] into a persisted [building.Map].
//
// # Re-keying
//
// Vertex identifiers in a live scene are sparse: deleting a vertex releases
// its identifier and nothing fills the gap. The persisted format uses the
// array index as identity, so every save renumbers each level's vertices to
// 0..n-1 in traversal order and rewrites the two vertex references held by
// every lane, wall and measurement. The two steps run in separate passes so
// that no reference is rewritten against a partial mapping:
//
//	vertices, rk, err := save.RekeyVertices("L1", entries)  // pass one
//	lanes, err := save.Rewrite(rk, "L1", "lane", lanes)      // pass two
//
// Both functions are pure. [Assemble] runs them for every level of the single
// map root and folds the results into a document keyed by level name.
//
// # Save Pass
//
// A [Saver] performs one exclusive pass: assemble, commit the dense
// numbering back into the scene, and hand the document to a [Sink]. Any
// assembly failure aborts the pass before the sink is called, so a
// partially assembled document is never written.
//
// # Scheduling
//
// A [Scheduler] owns the scene. Edits go through [Scheduler.Do]; save
// requests go into a single pending [Slot] where a newer request replaces
// an older one. [Scheduler.Run] executes a pass whenever the slot fills.
package save
