// Package io provides YAML and JSON import and export for building maps.
//
// # Overview
//
// This package moves [building.Map] documents between bytes and values. The
// YAML encoding is the canonical one, read and written by downstream RMF
// tooling; JSON is offered for tools that prefer it. Both encodings emit map
// keys in sorted order, so level collections diff cleanly between saves.
//
// # Import
//
// Use [ImportFile] to read a document from a path (format chosen by file
// extension), or [ReadYAML] / [ReadJSON] to read from any io.Reader:
//
//	m, err := io.ImportFile("office.building.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Import checks the document shape only. Referential integrity of the
// decoded levels is checked when the document is spawned into a scene.
//
// # Export
//
// Use [Encode] to write a document in a given [Format] to any io.Writer.
// Writing to a durable location is the job of the storage package, which
// uses [Encode] for the byte encoding.
//
// [building.Map]: github.com/matzehuels/buildingmap/pkg/building.Map
package io
