package vm

import (
	"minijvm/classfile"
	"minijvm/heap"
)

// popCells pops n cells off f's operand stack and returns them in original
// push order (cells[0] is the cell that was pushed first).
func (f *Frame) popCells(n int) []int32 {
	cells := make([]int32, n)
	for i := n - 1; i >= 0; i-- {
		cells[i] = f.PopInt32()
	}
	return cells
}

// resolveMethod loads (without scheduling init frames) className and looks
// up (methodName, descriptor) on it.
func (rt *Runtime) resolveMethod(className, methodName, descriptor string) (*classfile.Class, *classfile.MethodInfo, bool, error) {
	target, wasFirstTime, err := rt.loadAndLink(className)
	if err != nil {
		return nil, nil, false, err
	}
	m, ok := target.FindMethod(methodName, descriptor)
	if !ok {
		return nil, nil, false, Trap(LinkError, "no such method %s.%s%s", className, methodName, descriptor)
	}
	return target, m, wasFirstTime, nil
}

// invokeStatic implements invokestatic: no receiver slot, arguments occupy
// locals[0..nargs-1].
func (rt *Runtime) invokeStatic(caller *Frame, className, methodName, descriptor string) error {
	target, m, wasFirstTime, err := rt.resolveMethod(className, methodName, descriptor)
	if err != nil {
		return err
	}
	nargs := classfile.ArgumentSlotCount(descriptor)
	args := caller.popCells(nargs)

	if m.IsNative() {
		// Natives execute synchronously in Go, so there is no callee
		// frame to defer init frames behind: drain them first.
		before := len(rt.Frames)
		if err := rt.scheduleInitFrames(target, className, wasFirstTime); err != nil {
			return err
		}
		if err := rt.drainPushedFrames(before); err != nil {
			return err
		}
		return rt.callNative(className, methodName, descriptor, args, nil)
	}
	if m.Code == nil {
		return Trap(LinkError, "method %s.%s%s has no code and is not native", className, methodName, descriptor)
	}

	loc := Location{Class: target, ClassName: className, Method: m, MethodName: methodName, Descriptor: descriptor}
	frame := NewFrame(loc, int(m.Code.MaxLocals), int(m.Code.MaxStack))
	copy(frame.Locals, args)
	rt.PushFrame(frame)
	return rt.scheduleInitFrames(target, className, wasFirstTime)
}

// invokeWithReceiver implements invokevirtual/invokespecial: the receiver
// is popped after the arguments (it was pushed first) and placed at
// locals[0]; arguments follow at locals[1..nargs].
func (rt *Runtime) invokeWithReceiver(caller *Frame, className, methodName, descriptor string) error {
	target, m, wasFirstTime, err := rt.resolveMethod(className, methodName, descriptor)
	if err != nil {
		return err
	}
	nargs := classfile.ArgumentSlotCount(descriptor)
	args := caller.popCells(nargs)
	receiver := caller.PopRef()

	if m.IsNative() {
		before := len(rt.Frames)
		if err := rt.scheduleInitFrames(target, className, wasFirstTime); err != nil {
			return err
		}
		if err := rt.drainPushedFrames(before); err != nil {
			return err
		}
		return rt.callNative(className, methodName, descriptor, args, &receiver)
	}
	if m.Code == nil {
		return Trap(LinkError, "method %s.%s%s has no code and is not native", className, methodName, descriptor)
	}

	loc := Location{Class: target, ClassName: className, Method: m, MethodName: methodName, Descriptor: descriptor}
	frame := NewFrame(loc, int(m.Code.MaxLocals), int(m.Code.MaxStack))
	frame.StoreRef(0, receiver)
	copy(frame.Locals[1:], args)
	rt.PushFrame(frame)
	return rt.scheduleInitFrames(target, className, wasFirstTime)
}

// doInvoke is the shared entry point for invokevirtual, invokespecial, and
// invokestatic: resolve the method-ref constant into its (class, name,
// descriptor) triple and dispatch to the binding convention matching
// whether the call reserves a receiver slot.
func (rt *Runtime) doInvoke(caller *Frame, poolIndex int, hasReceiver bool) error {
	className, methodName, descriptor, err := caller.Loc.Class.ResolveMethodref(poolIndex)
	if err != nil {
		return Trap(LinkError, "invoke: %v", err)
	}
	if hasReceiver {
		return rt.invokeWithReceiver(caller, className, methodName, descriptor)
	}
	return rt.invokeStatic(caller, className, methodName, descriptor)
}

// instantiate is the `new` opcode's effect: resolve the class name from a
// tag-7 constant, ensure the class is loaded+initialized, allocate a fresh
// instance, and return its ref.
func (rt *Runtime) instantiate(class *classfile.Class, classRefIndex int) (heap.Ref, error) {
	className, err := class.ClassNameAt(classRefIndex)
	if err != nil {
		return heap.Null, Trap(IllegalOperand, "new: %v", err)
	}
	return rt.instantiateObject(className)
}
