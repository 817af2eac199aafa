package scene

import (
	"maps"
	"slices"
)

// LevelVertices maps a level's live vertex identifiers to entities.
// The zero value is not usable; use [NewLevelVertices].
type LevelVertices struct {
	byID map[int]Entity
	next int
}

// NewLevelVertices returns an empty table whose first identifier is 0.
func NewLevelVertices() *LevelVertices {
	return &LevelVertices{byID: make(map[int]Entity)}
}

// Add assigns the next identifier to e and returns it.
func (lv *LevelVertices) Add(e Entity) int {
	id := lv.next
	lv.byID[id] = e
	lv.next++
	return id
}

// Get returns the entity holding identifier id.
func (lv *LevelVertices) Get(id int) (Entity, bool) {
	e, ok := lv.byID[id]
	return e, ok
}

// Remove releases id. The identifier is not reused by Add.
func (lv *LevelVertices) Remove(id int) {
	delete(lv.byID, id)
}

// Len returns the number of live identifiers.
func (lv *LevelVertices) Len() int { return len(lv.byID) }

// Next returns the identifier the next Add will assign.
func (lv *LevelVertices) Next() int { return lv.next }

// IDs returns the live identifiers in ascending order.
func (lv *LevelVertices) IDs() []int {
	return slices.Sorted(maps.Keys(lv.byID))
}

// Dense reports whether the live identifiers are exactly 0..Len()-1.
func (lv *LevelVertices) Dense() bool {
	for id := range lv.byID {
		if id < 0 || id >= len(lv.byID) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (lv *LevelVertices) Clone() *LevelVertices {
	return &LevelVertices{byID: maps.Clone(lv.byID), next: lv.next}
}
