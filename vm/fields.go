package vm

// isWideDescriptor reports whether a field descriptor occupies two 32-bit
// cells (long/double) rather than one.
func isWideDescriptor(descriptor string) bool {
	return descriptor == "J" || descriptor == "D"
}

// doGetstatic implements getstatic: resolve the field-ref, ensure the
// declaring class is loaded (static access triggers lazy loading and, on
// first load, schedules its init frames), and push the static cell's current
// value. On a first touch that value is read before the scheduled <clinit>
// runs.
func (rt *Runtime) doGetstatic(caller *Frame, poolIndex int) error {
	className, fieldName, descriptor, err := caller.Loc.Class.ResolveFieldref(poolIndex)
	if err != nil {
		return Trap(LinkError, "getstatic: %v", err)
	}
	target, err := rt.ensureLoaded(className)
	if err != nil {
		return err
	}
	field, _, ok := target.FindField(fieldName, descriptor)
	if !ok {
		return Trap(LinkError, "no such static field %s.%s:%s", className, fieldName, descriptor)
	}
	if isWideDescriptor(descriptor) {
		caller.PushInt64(field.Value)
	} else {
		caller.PushInt32(int32(field.Value))
	}
	return nil
}

// doPutstatic implements putstatic: pop a value of the field's width and
// store it in the static cell.
func (rt *Runtime) doPutstatic(caller *Frame, poolIndex int) error {
	className, fieldName, descriptor, err := caller.Loc.Class.ResolveFieldref(poolIndex)
	if err != nil {
		return Trap(LinkError, "putstatic: %v", err)
	}
	target, err := rt.ensureLoaded(className)
	if err != nil {
		return err
	}
	field, _, ok := target.FindField(fieldName, descriptor)
	if !ok {
		return Trap(LinkError, "no such static field %s.%s:%s", className, fieldName, descriptor)
	}
	if isWideDescriptor(descriptor) {
		field.Value = caller.PopInt64()
	} else {
		field.Value = int64(caller.PopInt32())
	}
	return nil
}

// doGetfield implements getfield: resolve the field-ref (no lazy loading —
// the instance already exists, so its class is necessarily loaded), pop the
// receiver, and push its field's current value.
func (rt *Runtime) doGetfield(caller *Frame, poolIndex int) error {
	_, fieldName, descriptor, err := caller.Loc.Class.ResolveFieldref(poolIndex)
	if err != nil {
		return Trap(LinkError, "getfield: %v", err)
	}
	ref := caller.PopRef()
	obj, err := rt.Heap.GetObject(ref)
	if err != nil {
		return Trap(IllegalOperand, "getfield: %v", err)
	}
	fld, ok := obj.Field(fieldName + ":" + descriptor)
	if !ok {
		return Trap(LinkError, "instance of %s has no field %s:%s", obj.Typename, fieldName, descriptor)
	}
	if isWideDescriptor(descriptor) {
		caller.PushInt64(fld.Value)
	} else {
		caller.PushInt32(int32(fld.Value))
	}
	return nil
}

// doPutfield implements putfield: pop a value of the field's width, then the
// receiver, and store the value into the instance's field map.
func (rt *Runtime) doPutfield(caller *Frame, poolIndex int) error {
	_, fieldName, descriptor, err := caller.Loc.Class.ResolveFieldref(poolIndex)
	if err != nil {
		return Trap(LinkError, "putfield: %v", err)
	}
	var value int64
	if isWideDescriptor(descriptor) {
		value = caller.PopInt64()
	} else {
		value = int64(caller.PopInt32())
	}
	ref := caller.PopRef()
	obj, err := rt.Heap.GetObject(ref)
	if err != nil {
		return Trap(IllegalOperand, "putfield: %v", err)
	}
	fld, ok := obj.Field(fieldName + ":" + descriptor)
	if !ok {
		return Trap(LinkError, "instance of %s has no field %s:%s", obj.Typename, fieldName, descriptor)
	}
	fld.Value = value
	return nil
}
