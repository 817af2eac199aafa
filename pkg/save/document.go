package save

import (
	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	"github.com/matzehuels/buildingmap/pkg/scene"
)

// Assembly is an assembled document plus what is needed to commit its
// numbering back into the scene.
type Assembly struct {
	Map    *building.Map
	Root   scene.Entity
	Rekeys map[scene.Entity]Rekey
}

// FindRoot returns the single map root of s. Zero or several roots is a
// precondition failure.
func FindRoot(s *scene.Scene) (scene.Entity, error) {
	roots := s.Roots()
	switch len(roots) {
	case 1:
		return roots[0], nil
	case 0:
		return 0, bmerrors.New(bmerrors.ErrCodePrecondition, "scene has no map root to save")
	default:
		return 0, bmerrors.New(bmerrors.ErrCodePrecondition, "scene has %d map roots, expected exactly one", len(roots))
	}
}

// Assemble reads the whole scene and returns the document to persist.
// The scene is not modified.
func Assemble(s *scene.Scene) (*Assembly, error) {
	root, err := FindRoot(s)
	if err != nil {
		return nil, err
	}
	name, ok := s.Name(root)
	if !ok {
		return nil, bmerrors.New(bmerrors.ErrCodeMissingComponent, "map root has no name")
	}
	cs, ok := s.CrowdSim(root)
	if !ok {
		return nil, bmerrors.New(bmerrors.ErrCodeMissingComponent, "map %q has no crowd simulation configuration", name)
	}

	m := &building.Map{
		Name:     name,
		Version:  building.FormatVersion,
		CrowdSim: cs.Clone(),
		Levels:   make(map[string]building.Level),
	}
	a := &Assembly{Map: m, Root: root, Rekeys: make(map[scene.Entity]Rekey)}

	for _, level := range s.Levels(root) {
		levelName, doc, rk, err := AssembleLevel(s, level)
		if err != nil {
			return nil, err
		}
		if _, dup := m.Levels[levelName]; dup {
			return nil, bmerrors.New(bmerrors.ErrCodeDuplicateLevel, "map %q has more than one level named %q", name, levelName)
		}
		m.Levels[levelName] = doc
		a.Rekeys[level] = rk
	}
	return a, nil
}

// Commit relabels the scene with the dense numbering of a. Levels whose
// mapping is already the identity are left alone.
func (a *Assembly) Commit(s *scene.Scene) error {
	for level, rk := range a.Rekeys {
		if rk.Identity() {
			if lv, ok := s.Vertices(level); ok && lv.Next() == lv.Len() {
				continue
			}
		}
		if err := s.Relabel(level, rk); err != nil {
			return bmerrors.Wrap(bmerrors.ErrCodeInternal, err, "relabel level entity %d", level)
		}
	}
	return nil
}
