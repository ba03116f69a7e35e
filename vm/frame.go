package vm

import (
	"minijvm/classfile"
	"minijvm/heap"
)

// Location identifies what bytecode a frame is executing: the declaring
// class and the method within it.
type Location struct {
	Class      *classfile.Class
	ClassName  string
	Method     *classfile.MethodInfo
	MethodName string
	Descriptor string
}

// Frame is a per-invocation execution record. 64-bit values occupy two
// adjacent cells, high cell first, in both Locals and Operands.
type Frame struct {
	Loc       Location
	Locals    []int32
	Operands  []int32
	PC        int
	MaxLocals int
	MaxStack  int
}

// NewFrame allocates a frame for the given location, sized by maxLocals and
// maxStack (from the method's Code attribute).
func NewFrame(loc Location, maxLocals, maxStack int) *Frame {
	return &Frame{
		Loc:       loc,
		Locals:    make([]int32, maxLocals),
		Operands:  make([]int32, 0, maxStack),
		MaxLocals: maxLocals,
		MaxStack:  maxStack,
	}
}

func (f *Frame) Code() []byte {
	return f.Loc.Method.Code.Code
}

// --- operand stack ---

func (f *Frame) PushInt32(v int32) {
	f.Operands = append(f.Operands, v)
}

func (f *Frame) PopInt32() int32 {
	n := len(f.Operands) - 1
	v := f.Operands[n]
	f.Operands = f.Operands[:n]
	return v
}

func (f *Frame) PeekInt32() int32 {
	return f.Operands[len(f.Operands)-1]
}

// PushInt64 pushes a 64-bit value as two cells, high then low.
func (f *Frame) PushInt64(v int64) {
	high := int32(v >> 32)
	low := int32(v & 0xFFFFFFFF)
	f.PushInt32(high)
	f.PushInt32(low)
}

// PopInt64 pops two cells (low first, then high) and reassembles them.
func (f *Frame) PopInt64() int64 {
	low := f.PopInt32()
	high := f.PopInt32()
	return int64(high)<<32 | int64(uint32(low))
}

func (f *Frame) PushRef(r heap.Ref) {
	f.PushInt32(int32(r))
}

func (f *Frame) PopRef() heap.Ref {
	return heap.Ref(f.PopInt32())
}

// --- locals ---

func (f *Frame) LoadInt32(i int) int32 {
	return f.Locals[i]
}

func (f *Frame) StoreInt32(i int, v int32) {
	f.Locals[i] = v
}

// LoadInt64 reassembles a 64-bit value from locals[i] (high) and
// locals[i+1] (low).
func (f *Frame) LoadInt64(i int) int64 {
	high := f.Locals[i]
	low := f.Locals[i+1]
	return int64(high)<<32 | int64(uint32(low))
}

func (f *Frame) StoreInt64(i int, v int64) {
	f.Locals[i] = int32(v >> 32)
	f.Locals[i+1] = int32(v & 0xFFFFFFFF)
}

func (f *Frame) LoadRef(i int) heap.Ref {
	return heap.Ref(f.Locals[i])
}

func (f *Frame) StoreRef(i int, r heap.Ref) {
	f.Locals[i] = int32(r)
}
