package ecs

import (
	"math"
	"strconv"
)

// Entity is an opaque handle: the low 32 bits hold the id, the high 32 bits
// the generation the id was issued with.
type Entity uint64

// Null is the reserved "no entity" value. It is never issued.
const Null Entity = math.MaxUint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// String formats e as id v generation, or "null".
func (e Entity) String() string {
	if e == Null {
		return "null"
	}
	return strconv.FormatUint(uint64(e.id()), 10) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}
