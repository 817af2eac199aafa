package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	bmio "github.com/matzehuels/buildingmap/pkg/io"
	"github.com/matzehuels/buildingmap/pkg/observability"
)

// Sentinel errors for location handling.
var (
	// ErrUnsupportedScheme is returned when no backend is registered for a
	// location's scheme.
	ErrUnsupportedScheme = errors.New("unsupported location scheme")

	// ErrEmptyKey is returned when a location names a backend but no object.
	ErrEmptyKey = errors.New("location has no object key")
)

// Scheme names.
const (
	SchemeFile   = "file"
	SchemeMemory = "mem"
	SchemeRedis  = "redis"
	SchemeMongo  = "mongodb"
	SchemeS3     = "s3"
)

// Location is a parsed save target.
type Location struct {
	Raw    string
	Scheme string
	// Host is the bucket, collection or first key segment for network
	// backends and empty for files.
	Host string
	// Path is the file path, or the object key below Host.
	Path string
}

// Key returns Host and Path joined, the full object name.
func (l Location) Key() string {
	return strings.Trim(path.Join(l.Host, l.Path), "/")
}

// ParseLocation parses raw. Strings without "://" are file paths.
func ParseLocation(raw string) (Location, error) {
	if err := bmerrors.ValidateLocation(raw); err != nil {
		return Location{}, err
	}
	if !strings.Contains(raw, "://") {
		return Location{Raw: raw, Scheme: SchemeFile, Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, bmerrors.Wrap(bmerrors.ErrCodeInvalidLocation, err, "parse location %q", raw)
	}
	loc := Location{Raw: raw, Scheme: strings.ToLower(u.Scheme), Host: u.Host, Path: strings.TrimPrefix(u.Path, "/")}
	if loc.Scheme == SchemeFile {
		loc.Path = u.Host + u.Path
		loc.Host = ""
	}
	if loc.Key() == "" {
		return Location{}, bmerrors.Wrap(bmerrors.ErrCodeInvalidLocation, ErrEmptyKey, "location %q", raw)
	}
	return loc, nil
}

// Format returns the encoding implied by the location's extension, or def.
func (l Location) Format(def bmio.Format) bmio.Format {
	return bmio.FormatFromPath(l.Key(), def)
}

// Backend stores a document at a parsed location and returns the number of
// bytes written.
type Backend interface {
	Store(ctx context.Context, loc Location, m *building.Map) (int, error)
}

// Router dispatches writes to backends by scheme.
type Router struct {
	mu       sync.RWMutex
	backends map[string]Backend
	logger   *log.Logger
}

// NewRouter returns a router with a file backend using def as the fallback
// format. A nil logger discards output.
func NewRouter(def bmio.Format, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Router{backends: make(map[string]Backend), logger: logger}
	r.Register(SchemeFile, NewFileBackend(def))
	return r
}

// Register installs b for scheme, replacing any previous backend.
func (r *Router) Register(scheme string, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[strings.ToLower(scheme)] = b
}

// Has reports whether a backend is registered for scheme.
func (r *Router) Has(scheme string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.backends[strings.ToLower(scheme)]
	return ok
}

// Write parses location and stores m with the matching backend.
func (r *Router) Write(ctx context.Context, m *building.Map, location string) error {
	loc, err := ParseLocation(location)
	if err != nil {
		return err
	}
	r.mu.RLock()
	b, ok := r.backends[loc.Scheme]
	r.mu.RUnlock()
	if !ok {
		return bmerrors.Wrap(bmerrors.ErrCodeInvalidLocation, ErrUnsupportedScheme, "%s", loc.Scheme)
	}

	start := time.Now()
	n, err := b.Store(ctx, loc, m)
	elapsed := time.Since(start)
	observability.Sink().OnWrite(ctx, loc.Scheme, n, elapsed, err)
	if err != nil {
		return bmerrors.Wrap(bmerrors.ErrCodeWriteFailed, err, "%s sink", loc.Scheme)
	}
	r.logger.Debug("wrote document", "scheme", loc.Scheme, "key", loc.Key(), "bytes", n, "duration", elapsed)
	return nil
}

func encode(m *building.Map, f bmio.Format) ([]byte, error) {
	data, err := bmio.Marshal(m, f)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return data, nil
}
