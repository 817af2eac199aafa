// Package building defines the persisted building map document.
//
// # Overview
//
// A [Map] is the canonical on-disk representation of a building: a name, a
// format version, one crowd-simulation configuration and a name-keyed set of
// [Level] values. Each level stores its vertices as an array whose position
// is the vertex identity, and every dependent entity ([Lane], [Wall],
// [Measurement]) refers to its two endpoints by index into that array.
//
// # Encoding
//
// The document follows the RMF building format. Entities that carry vertex
// references are encoded as tuples rather than objects:
//
//	vertices:
//	  - [1.5, 2.0, 0.0, "charger", {is_charger: [4, true]}]
//	lanes:
//	  - [0, 1, {bidirectional: [4, true], graph_idx: [2, 0], orientation: [1, ""]}]
//	walls:
//	  - [0, 1, {alpha: [3, 1.0], texture_name: [1, "default"]}]
//	measurements:
//	  - [0, 1, {distance: [3, 4.5]}]
//
// Scalar properties are stored as [type_code, value] pairs, see [ParamKind].
// All tuple types implement yaml.Marshaler/Unmarshaler and
// json.Marshaler/Unmarshaler so the same document round-trips through both
// encodings.
//
// # Versioning
//
// [FormatVersion] is written by every save. This package performs no
// migration between versions.
package building
