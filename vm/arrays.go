package vm

// doNewarray implements newarray(atype): pop a count, allocate a
// zero-initialized array of the requested primitive element type, push its
// reference.
func (rt *Runtime) doNewarray(caller *Frame, atype uint8) error {
	count := caller.PopInt32()
	if count < 0 {
		return Trap(IllegalOperand, "newarray: negative count %d", count)
	}
	ref, err := rt.Heap.AllocateArray(atype, int(count))
	if err != nil {
		return Trap(IllegalOperand, "newarray: %v", err)
	}
	caller.PushRef(ref)
	return nil
}

// doArraylength implements arraylength: pop a reference, push its length.
// Traps with IllegalOperand if the reference does not denote an array.
func (rt *Runtime) doArraylength(caller *Frame) error {
	ref := caller.PopRef()
	obj, err := rt.Heap.GetObject(ref)
	if err != nil {
		return Trap(IllegalOperand, "arraylength: %v", err)
	}
	if !obj.IsArray {
		return Trap(IllegalOperand, "arraylength: reference is not an array (%s)", obj.Typename)
	}
	caller.PushInt32(int32(len(obj.Cells)))
	return nil
}

// doIaload implements iaload: pop index then ref, push the element as a
// full 32-bit int.
func (rt *Runtime) doIaload(caller *Frame) error {
	v, err := rt.arrayLoad(caller)
	if err != nil {
		return err
	}
	caller.PushInt32(v)
	return nil
}

// doCaload implements caload: pop index then ref, push the element
// zero-extended as a char.
func (rt *Runtime) doCaload(caller *Frame) error {
	v, err := rt.arrayLoad(caller)
	if err != nil {
		return err
	}
	caller.PushInt32(int32(uint16(v)))
	return nil
}

func (rt *Runtime) arrayLoad(caller *Frame) (int32, error) {
	index := caller.PopInt32()
	ref := caller.PopRef()
	obj, err := rt.Heap.GetObject(ref)
	if err != nil {
		return 0, Trap(IllegalOperand, "array load: %v", err)
	}
	if !obj.IsArray {
		return 0, Trap(IllegalOperand, "array load: reference is not an array (%s)", obj.Typename)
	}
	if index < 0 || int(index) >= len(obj.Cells) {
		return 0, Trap(IllegalOperand, "array load: index %d out of bounds for length %d", index, len(obj.Cells))
	}
	return obj.Cells[index], nil
}

// doIastore implements iastore: pop value, index, ref; store the full
// 32-bit value.
func (rt *Runtime) doIastore(caller *Frame) error {
	value := caller.PopInt32()
	return rt.arrayStore(caller, value)
}

// doCastore implements castore: pop value, index, ref; narrow the value to
// 16 bits before storing.
func (rt *Runtime) doCastore(caller *Frame) error {
	value := caller.PopInt32()
	return rt.arrayStore(caller, int32(uint16(value)))
}

func (rt *Runtime) arrayStore(caller *Frame, value int32) error {
	index := caller.PopInt32()
	ref := caller.PopRef()
	obj, err := rt.Heap.GetObject(ref)
	if err != nil {
		return Trap(IllegalOperand, "array store: %v", err)
	}
	if !obj.IsArray {
		return Trap(IllegalOperand, "array store: reference is not an array (%s)", obj.Typename)
	}
	if index < 0 || int(index) >= len(obj.Cells) {
		return Trap(IllegalOperand, "array store: index %d out of bounds for length %d", index, len(obj.Cells))
	}
	obj.Cells[index] = value
	return nil
}
