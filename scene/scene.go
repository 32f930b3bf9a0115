// Package scene is the simulation-region entity-component store the
// renderer reads transform/camera/static-model tuples from. It carries
// exactly the three component kinds the renderer needs and is
// deliberately not a general ECS (no systems, no queries beyond
// get/has/remove).
package scene

import "github.com/go-gl/mathgl/mgl32"

// Transform is a cached model matrix plus the world position,
// orientation, and scale it derives from.
type Transform struct {
	Cached      mgl32.Mat4
	WorldPos    mgl32.Vec3
	Orientation mgl32.Quat
	Scale       mgl32.Vec3
	Dirty       bool
}

// NewTransform builds a Transform at the identity pose with unit scale.
func NewTransform() Transform {
	return Transform{
		Cached:      mgl32.Ident4(),
		Orientation: mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
		Dirty:       true,
	}
}

// Recompute rebuilds Cached from WorldPos/Orientation/Scale and clears
// Dirty.
func (t *Transform) Recompute() {
	t.Cached = mgl32.Translate3D(t.WorldPos[0], t.WorldPos[1], t.WorldPos[2]).
		Mul4(t.Orientation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
	t.Dirty = false
}

// Camera holds a projection and view matrix pair.
type Camera struct {
	Proj mgl32.Mat4
	View mgl32.Mat4
}

// MaxSubmesh bounds StaticModel's fixed material-id array.
const MaxSubmesh = 16

// StaticModel is a mesh registry handle plus one material handle per
// submesh.
type StaticModel struct {
	MeshID       uint64
	MaterialIDs  [MaxSubmesh]uint64
	SubmeshCount int
}

// EntityID identifies an entity within a Region.
type EntityID uint32

// Entity is a minimal {id, name} record; the owning Region is implicit
// since a Region's tables are always addressed through it rather than
// back-referenced from each entity.
type Entity struct {
	ID   EntityID
	Name string
}

// Table is a dense-array-plus-index-map component table for one
// component kind.
type Table[T any] struct {
	entries []T
	index   map[EntityID]int
}

// NewTable builds an empty component Table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{index: make(map[EntityID]int)}
}

// Add installs comp for entity id, overwriting any existing component of
// this kind for that entity.
func (t *Table[T]) Add(id EntityID, comp T) *T {
	if i, ok := t.index[id]; ok {
		t.entries[i] = comp
		return &t.entries[i]
	}
	t.index[id] = len(t.entries)
	t.entries = append(t.entries, comp)
	return &t.entries[len(t.entries)-1]
}

// Get returns a pointer to id's component, or nil if it has none.
func (t *Table[T]) Get(id EntityID) *T {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	return &t.entries[i]
}

// Has reports whether id has a component of this kind.
func (t *Table[T]) Has(id EntityID) bool {
	_, ok := t.index[id]
	return ok
}

// Remove deletes id's component via swap-remove, keeping the dense array
// packed; the index map is updated for whichever entity was moved into
// the vacated slot.
func (t *Table[T]) Remove(id EntityID) bool {
	i, ok := t.index[id]
	if !ok {
		return false
	}
	last := len(t.entries) - 1
	if i != last {
		t.entries[i] = t.entries[last]
		for otherID, otherIdx := range t.index {
			if otherIdx == last {
				t.index[otherID] = i
				break
			}
		}
	}
	t.entries = t.entries[:last]
	delete(t.index, id)
	return true
}

// Len returns the number of live components in the table.
func (t *Table[T]) Len() int { return len(t.entries) }

// Region owns the entity array, id->index map, the three concrete
// component tables the renderer reads each tick, and the running id
// counter.
type Region struct {
	entities []Entity
	byID     map[EntityID]int
	nextID   EntityID

	Transforms   *Table[Transform]
	Cameras      *Table[Camera]
	StaticModels *Table[StaticModel]
}

// NewRegion builds an empty Region with its three component tables ready.
func NewRegion() *Region {
	return &Region{
		byID:         make(map[EntityID]int),
		Transforms:   NewTable[Transform](),
		Cameras:      NewTable[Camera](),
		StaticModels: NewTable[StaticModel](),
	}
}

// AddEntity allocates a fresh id, records name, and returns the new
// Entity.
func (r *Region) AddEntity(name string) Entity {
	r.nextID++
	e := Entity{ID: r.nextID, Name: name}
	r.byID[e.ID] = len(r.entities)
	r.entities = append(r.entities, e)
	return e
}

// GetEntity looks up an entity by id.
func (r *Region) GetEntity(id EntityID) (Entity, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Entity{}, false
	}
	return r.entities[i], true
}

// RemoveEntity deletes the entity and its components from every table,
// via swap-remove on the entity array itself.
func (r *Region) RemoveEntity(id EntityID) bool {
	i, ok := r.byID[id]
	if !ok {
		return false
	}
	last := len(r.entities) - 1
	if i != last {
		r.entities[i] = r.entities[last]
		r.byID[r.entities[i].ID] = i
	}
	r.entities = r.entities[:last]
	delete(r.byID, id)

	r.Transforms.Remove(id)
	r.Cameras.Remove(id)
	r.StaticModels.Remove(id)
	return true
}

// Len returns the number of live entities.
func (r *Region) Len() int { return len(r.entities) }
