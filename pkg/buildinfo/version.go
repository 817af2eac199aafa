// Package buildinfo reports the binary version and the document format it
// writes.
//
// Version, Commit and Date are set via ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/buildingmap/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/buildingmap/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/buildingmap/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"

	"github.com/matzehuels/buildingmap/pkg/building"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// FormatVersion returns the building document version this binary writes.
func FormatVersion() int { return building.FormatVersion }

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ndocument format: %d", Version, Commit, Date, FormatVersion())
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s (document format %d)\ncommit: %s\nbuilt: %s\n", Version, FormatVersion(), Commit, Date)
}
