// Package pkg provides the libraries behind buildingmap.
//
// # Overview
//
// buildingmap persists multi-level building floor plans. A live editing
// session keeps vertices under sparse, level-scoped identifiers; the
// persisted document indexes them densely from zero. The packages are:
//
//  1. [building] - Document model and its YAML/JSON tuple encoding
//  2. [io] - Reading and writing documents
//  3. [scene] - The live entity tree that editing mutates
//  4. [save] - Re-keying, assembly, save passes and request coalescing
//  5. [storage] - Sinks: files, memory, Redis, MongoDB and S3
//  6. [server] - HTTP editing and save trigger API
//
// # Data Flow
//
//	document (YAML/JSON)
//	         ↓
//	    [io] ImportFile
//	         ↓
//	    [scene] Spawn, then edits (AddVertex, Despawn, ...)
//	         ↓
//	    [save] Assemble: rekey vertices, rewrite references
//	         ↓
//	    [storage] Router.Write
//
// Supporting packages: [config] (TOML settings), [errors] (coded errors),
// [observability] (hooks), [render/nodelink] (level diagrams) and
// [buildinfo] (version).
package pkg
