package vm

// Integer arithmetic. Operand order throughout: pop v2 then v1, push v1 op v2.

func (rt *Runtime) doIadd(f *Frame) { v2, v1 := f.PopInt32(), f.PopInt32(); f.PushInt32(v1 + v2) }
func (rt *Runtime) doIsub(f *Frame) { v2, v1 := f.PopInt32(), f.PopInt32(); f.PushInt32(v1 - v2) }
func (rt *Runtime) doImul(f *Frame) { v2, v1 := f.PopInt32(), f.PopInt32(); f.PushInt32(v1 * v2) }

func (rt *Runtime) doIdiv(f *Frame) error {
	v2, v1 := f.PopInt32(), f.PopInt32()
	if v2 == 0 {
		return Trap(IllegalOperand, "idiv: division by zero")
	}
	f.PushInt32(v1 / v2)
	return nil
}

// doIrem implements irem as `v1 - (v1/v2)*v2`, matching truncated-division
// remainder semantics exactly.
func (rt *Runtime) doIrem(f *Frame) error {
	v2, v1 := f.PopInt32(), f.PopInt32()
	if v2 == 0 {
		return Trap(IllegalOperand, "irem: division by zero")
	}
	f.PushInt32(v1 - (v1/v2)*v2)
	return nil
}

func (rt *Runtime) doIneg(f *Frame) { f.PushInt32(-f.PopInt32()) }

func (rt *Runtime) doIshl(f *Frame) {
	shift, v := f.PopInt32(), f.PopInt32()
	f.PushInt32(v << (uint32(shift) & 0x1F))
}

func (rt *Runtime) doIushr(f *Frame) {
	shift, v := f.PopInt32(), f.PopInt32()
	f.PushInt32(int32(uint32(v) >> (uint32(shift) & 0x1F)))
}

func (rt *Runtime) doIand(f *Frame) { v2, v1 := f.PopInt32(), f.PopInt32(); f.PushInt32(v1 & v2) }

func (rt *Runtime) doIor(f *Frame) { v2, v1 := f.PopInt32(), f.PopInt32(); f.PushInt32(v1 | v2) }

func (rt *Runtime) doIxor(f *Frame) { v2, v1 := f.PopInt32(), f.PopInt32(); f.PushInt32(v1 ^ v2) }

// doIinc implements iinc(index, delta): locals[index] += sign_extend(delta).
func (rt *Runtime) doIinc(f *Frame, index int, delta int8) {
	f.Locals[index] += int32(delta)
}

// Long arithmetic: reassemble from adjacent cells, operate at 64 bits, split
// back via Frame.PushInt64.

func (rt *Runtime) doLadd(f *Frame) { v2, v1 := f.PopInt64(), f.PopInt64(); f.PushInt64(v1 + v2) }
func (rt *Runtime) doLsub(f *Frame) { v2, v1 := f.PopInt64(), f.PopInt64(); f.PushInt64(v1 - v2) }
func (rt *Runtime) doLmul(f *Frame) { v2, v1 := f.PopInt64(), f.PopInt64(); f.PushInt64(v1 * v2) }

func (rt *Runtime) doLdiv(f *Frame) error {
	v2, v1 := f.PopInt64(), f.PopInt64()
	if v2 == 0 {
		return Trap(IllegalOperand, "ldiv: division by zero")
	}
	f.PushInt64(v1 / v2)
	return nil
}

func (rt *Runtime) doLrem(f *Frame) error {
	v2, v1 := f.PopInt64(), f.PopInt64()
	if v2 == 0 {
		return Trap(IllegalOperand, "lrem: division by zero")
	}
	f.PushInt64(v1 - (v1/v2)*v2)
	return nil
}

func (rt *Runtime) doLneg(f *Frame) { f.PushInt64(-f.PopInt64()) }

func (rt *Runtime) doLand(f *Frame) { v2, v1 := f.PopInt64(), f.PopInt64(); f.PushInt64(v1 & v2) }
func (rt *Runtime) doLor(f *Frame)  { v2, v1 := f.PopInt64(), f.PopInt64(); f.PushInt64(v1 | v2) }
func (rt *Runtime) doLxor(f *Frame) { v2, v1 := f.PopInt64(), f.PopInt64(); f.PushInt64(v1 ^ v2) }

// Long shifts reassemble the full 64-bit value so bits carry across the
// 32-bit cell boundary; the shift amount is a 32-bit int popped from the
// top of the stack, masked to the low 6 bits.
func (rt *Runtime) doLshl(f *Frame) {
	shift := f.PopInt32()
	v := f.PopInt64()
	f.PushInt64(v << (uint32(shift) & 0x3F))
}

func (rt *Runtime) doLushr(f *Frame) {
	shift := f.PopInt32()
	v := f.PopInt64()
	f.PushInt64(int64(uint64(v) >> (uint32(shift) & 0x3F)))
}

// doI2l sign-extends: Go's int32->int64 conversion does the two's-complement
// extension and PushInt64 splits the high/low cells.
func (rt *Runtime) doI2l(f *Frame) { f.PushInt64(int64(f.PopInt32())) }

// doL2i discards the high cell, keeping the low cell's bits.
func (rt *Runtime) doL2i(f *Frame) { f.PushInt32(int32(f.PopInt64())) }

func (rt *Runtime) doI2b(f *Frame) { f.PushInt32(int32(int8(f.PopInt32()))) }
func (rt *Runtime) doI2c(f *Frame) { f.PushInt32(int32(uint16(f.PopInt32()))) }

// doLcmp reassembles both 64-bit values and pushes -1/0/1.
func (rt *Runtime) doLcmp(f *Frame) {
	v2, v1 := f.PopInt64(), f.PopInt64()
	switch {
	case v1 < v2:
		f.PushInt32(-1)
	case v1 > v2:
		f.PushInt32(1)
	default:
		f.PushInt32(0)
	}
}
