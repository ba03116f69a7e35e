package heap

import "github.com/pkg/errors"

// Ref is a heap reference: a non-negative 32-bit index into the heap
// vector. 0 denotes null.
type Ref int32

const Null Ref = 0

// Array-type tags used by the `newarray` opcode, per JVM SE 7 §6.5.
const (
	ATypeBoolean = 4
	ATypeChar    = 5
	ATypeFloat   = 6
	ATypeByte    = 8
	ATypeShort   = 9
	ATypeInt     = 10
)

// typenameForAtype maps a newarray type tag to an array typename. No
// [F/[D/[J support; atype 6 ("float") maps to [Z, since floating-point
// arithmetic beyond load/store is out of scope and the slot width is the
// same either way.
func typenameForAtype(atype uint8) (string, bool) {
	switch atype {
	case ATypeBoolean:
		return "[Z", true
	case ATypeChar:
		return "[C", true
	case ATypeFloat:
		return "[Z", true
	case ATypeByte:
		return "[B", true
	case ATypeShort:
		return "[S", true
	case ATypeInt:
		return "[I", true
	default:
		return "", false
	}
}

// Heap is an append-only vector of Objects. Objects are never reclaimed
// during the program's lifetime.
type Heap struct {
	objects []*Object
}

// New builds a Heap with index 0 pre-seeded as the null sentinel.
func New() *Heap {
	return &Heap{objects: []*Object{NewNull()}}
}

// AllocateObject materializes a new instance with the given typename and
// non-static field ids, pre-populated to zero, and returns its stable ref.
func (h *Heap) AllocateObject(typename string, fieldIDs []string) Ref {
	obj := NewInstance(typename, fieldIDs)
	h.objects = append(h.objects, obj)
	return Ref(len(h.objects) - 1)
}

// AllocateArray allocates a zero-initialized array of count cells for the
// given newarray type tag and returns its stable ref.
func (h *Heap) AllocateArray(atype uint8, count int) (Ref, error) {
	typename, ok := typenameForAtype(atype)
	if !ok {
		return Null, errors.Errorf("newarray: invalid array type tag %d", atype)
	}
	obj := NewArray(typename, count)
	h.objects = append(h.objects, obj)
	return Ref(len(h.objects) - 1), nil
}

// AllocateReferenceArray allocates an array of reference-typed cells
// (anewarray), all zero-initialized to null.
func (h *Heap) AllocateReferenceArray(elementType string, count int) Ref {
	obj := NewArray("[L"+elementType+";", count)
	h.objects = append(h.objects, obj)
	return Ref(len(h.objects) - 1)
}

// GetObject returns a mutable handle to the object at index ref. Invalid
// indices are fatal.
func (h *Heap) GetObject(ref Ref) (*Object, error) {
	idx := int(ref)
	if idx < 0 || idx >= len(h.objects) {
		return nil, errors.Errorf("heap: invalid reference %d", ref)
	}
	return h.objects[idx], nil
}

// Len reports the number of live entries, including the null sentinel.
func (h *Heap) Len() int {
	return len(h.objects)
}
