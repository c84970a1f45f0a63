package ecs

import "github.com/RoaringBitmap/roaring/v2"

// entityStore tracks entity generations, free ids and the set of live ids.
type entityStore struct {
	gen   []generation
	free  []entityID
	alive *roaring.Bitmap
	ver   uint64
}

func newEntityStore() entityStore {
	return entityStore{alive: roaring.New()}
}

func (s *entityStore) create() Entity {
	var id entityID
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		id = entityID(len(s.gen))
		s.gen = append(s.gen, 0)
	}
	s.alive.Add(uint32(id))
	s.ver++
	return makeEntity(id, s.gen[id])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	id := e.id()
	s.gen[id]++
	s.alive.Remove(uint32(id))
	s.ver++
	// An id whose generation wrapped would alias old handles; retire it.
	if s.gen[id] != 0 {
		s.free = append(s.free, id)
	}
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if e == Null {
		return false
	}
	id := e.id()
	if int(id) >= len(s.gen) {
		return false
	}
	return s.gen[id] == e.generation() && s.alive.Contains(uint32(id))
}

func (s *entityStore) len() int {
	return int(s.alive.GetCardinality())
}

// cursor walks live entities in ascending id order.
func (s *entityStore) cursor() cursor {
	return &aliveCursor{s: s, ids: s.alive.Iterator()}
}

type aliveCursor struct {
	s   *entityStore
	ids roaring.IntPeekable
}

func (c *aliveCursor) next() (Entity, bool) {
	if !c.ids.HasNext() {
		return Null, false
	}
	id := c.ids.Next()
	return makeEntity(entityID(id), c.s.gen[id]), true
}

func (s *entityStore) version() uint64 {
	return s.ver
}
