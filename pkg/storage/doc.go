// Package storage persists assembled building maps.
//
// A [Router] implements the save package's sink contract by dispatching on
// the scheme of the target location to a registered [Backend]:
//
//	office.building.yaml              file (plain path)
//	file:///srv/maps/office.json      file
//	mem://office.yaml                 in-process memory, for tests
//	redis://maps/office.yaml          Redis string value at key "maps/office.yaml"
//	mongodb://maps/office             MongoDB document "office" in collection "maps"
//	s3://bucket/maps/office.yaml      S3 or MinIO object
//
// Text backends choose YAML or JSON from the extension of the final path
// element and fall back to a configured default.
package storage
