package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmio "github.com/matzehuels/buildingmap/pkg/io"
)

// FileBackend writes documents to the local filesystem. Writes go to a
// temporary file in the target directory which is renamed over the target,
// so readers never see a partial document.
type FileBackend struct {
	def bmio.Format
}

// NewFileBackend returns a file backend falling back to def for paths
// without a known extension.
func NewFileBackend(def bmio.Format) *FileBackend {
	return &FileBackend{def: def}
}

// Store implements Backend.
func (f *FileBackend) Store(ctx context.Context, loc Location, m *building.Map) (int, error) {
	data, err := encode(m, loc.Format(f.def))
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(data), writeAtomic(loc.Path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return err
	}
	return nil
}

var _ Backend = (*FileBackend)(nil)
