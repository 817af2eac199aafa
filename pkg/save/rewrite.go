package save

import (
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
)

// Reference is a dependent entity holding a pair of vertex references.
// It is satisfied by [building.Lane], [building.Wall] and
// [building.Measurement].
type Reference[T any] interface {
	Endpoints() (int, int)
	WithEndpoints(a, b int) T
}

// Rewrite returns copies of items with both references translated through
// rk. The input slice is not modified. kind names the entity type in errors.
func Rewrite[T Reference[T]](rk Rekey, level, kind string, items []T) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, item := range items {
		a, b := item.Endpoints()
		na, ok := rk.Lookup(a)
		if !ok {
			return nil, dangling(level, kind, i, a)
		}
		nb, ok := rk.Lookup(b)
		if !ok {
			return nil, dangling(level, kind, i, b)
		}
		out = append(out, item.WithEndpoints(na, nb))
	}
	return out, nil
}

func dangling(level, kind string, index, id int) error {
	return bmerrors.New(bmerrors.ErrCodeDanglingReference,
		"level %q: %s %d references vertex %d which is not in the level", level, kind, index, id)
}
