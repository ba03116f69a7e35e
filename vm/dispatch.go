package vm

import (
	"encoding/binary"
	"math"

	"minijvm/classfile"
)

// Start registers an already-decoded entry class (read directly from the
// path given on the command line, not resolved through the classpath)
// under className, validates that it declares a static
// main([Ljava/lang/String;)V method, pushes the entry frame for it,
// schedules that class's init frames on top (first registration only), and
// drives the interpreter to completion.
func (rt *Runtime) Start(className string, class *classfile.Class) error {
	wasFirstTime := rt.Loader.Preload(className, class)
	m, ok := class.FindMethod("main", "([Ljava/lang/String;)V")
	if !ok || !m.IsStatic() || m.Code == nil {
		return Trap(NoSuchEntry, "main([Ljava/lang/String;)V missing or non-static in %s", className)
	}
	loc := Location{Class: class, ClassName: className, Method: m, MethodName: "main", Descriptor: "([Ljava/lang/String;)V"}
	frame := NewFrame(loc, int(m.Code.MaxLocals), int(m.Code.MaxStack))
	rt.PushFrame(frame)
	if err := rt.scheduleInitFrames(class, className, wasFirstTime); err != nil {
		return err
	}
	return rt.Run()
}

// Run drives opcode dispatch until the frame stack empties.
func (rt *Runtime) Run() error {
	for !rt.Empty() {
		if err := rt.step(); err != nil {
			return err
		}
	}
	return nil
}

// drainPushedFrames runs frames to completion until the frame stack
// returns to targetDepth. Used by native call sites: natives execute
// synchronously in Go with no callee frame of their own, so any init
// frames scheduled just ahead of the native call (first-time class load)
// must fully run before the native body can observe their effects.
func (rt *Runtime) drainPushedFrames(targetDepth int) error {
	for len(rt.Frames) > targetDepth {
		if err := rt.step(); err != nil {
			return err
		}
	}
	return nil
}

// step fetches the top frame, reads one opcode at pc, and executes its
// effect. The constant-pool and type-operand opcodes (ldc, ldc2_w, newarray,
// new, field and invoke opcodes) advance pc past their operand bytes before
// their effect runs, so a frame they push sits above an already-advanced
// caller; the others advance it afterwards. Branch targets
// are computed relative to the opcode's own starting position.
func (rt *Runtime) step() error {
	f := rt.TopFrame()
	code := f.Code()
	base := f.PC
	if base < 0 || base >= len(code) {
		return Trap(MalformedClassFile, "%s.%s: pc %d out of bounds (code length %d)", f.Loc.ClassName, f.Loc.MethodName, base, len(code))
	}
	op := code[base]

	switch op {
	case opNop:
		f.PC = base + 1

	case opAconstNull:
		f.PushRef(0)
		f.PC = base + 1

	case opIconstM1:
		f.PushInt32(-1)
		f.PC = base + 1
	case opIconst0:
		f.PushInt32(0)
		f.PC = base + 1
	case opIconst1:
		f.PushInt32(1)
		f.PC = base + 1
	case opIconst2:
		f.PushInt32(2)
		f.PC = base + 1
	case opIconst3:
		f.PushInt32(3)
		f.PC = base + 1
	case opIconst4:
		f.PushInt32(4)
		f.PC = base + 1
	case opIconst5:
		f.PushInt32(5)
		f.PC = base + 1
	case opLconst0:
		f.PushInt64(0)
		f.PC = base + 1
	case opLconst1:
		f.PushInt64(1)
		f.PC = base + 1

	case opBipush:
		v := int8(code[base+1])
		f.PushInt32(int32(v))
		f.PC = base + 2
	case opSipush:
		v := int16(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PushInt32(int32(v))
		f.PC = base + 3

	case opLdc:
		idx := int(code[base+1])
		f.PC = base + 2
		if err := rt.doLdc(f, idx); err != nil {
			return err
		}
	case opLdc2W:
		idx := int(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PC = base + 3
		if err := rt.doLdc2W(f, idx); err != nil {
			return err
		}

	case opIload:
		i := int(code[base+1])
		f.PushInt32(f.LoadInt32(i))
		f.PC = base + 2
	case opIload0:
		f.PushInt32(f.LoadInt32(0))
		f.PC = base + 1
	case opIload1:
		f.PushInt32(f.LoadInt32(1))
		f.PC = base + 1
	case opIload2:
		f.PushInt32(f.LoadInt32(2))
		f.PC = base + 1
	case opIload3:
		f.PushInt32(f.LoadInt32(3))
		f.PC = base + 1

	case opLload:
		i := int(code[base+1])
		f.PushInt64(f.LoadInt64(i))
		f.PC = base + 2
	case opLload0:
		f.PushInt64(f.LoadInt64(0))
		f.PC = base + 1
	case opLload1:
		f.PushInt64(f.LoadInt64(1))
		f.PC = base + 1
	case opLload2:
		f.PushInt64(f.LoadInt64(2))
		f.PC = base + 1
	case opLload3:
		f.PushInt64(f.LoadInt64(3))
		f.PC = base + 1

	case opAload:
		i := int(code[base+1])
		f.PushRef(f.LoadRef(i))
		f.PC = base + 2
	case opAload0:
		f.PushRef(f.LoadRef(0))
		f.PC = base + 1
	case opAload1:
		f.PushRef(f.LoadRef(1))
		f.PC = base + 1
	case opAload2:
		f.PushRef(f.LoadRef(2))
		f.PC = base + 1
	case opAload3:
		f.PushRef(f.LoadRef(3))
		f.PC = base + 1

	case opIstore:
		i := int(code[base+1])
		f.StoreInt32(i, f.PopInt32())
		f.PC = base + 2
	case opIstore0:
		f.StoreInt32(0, f.PopInt32())
		f.PC = base + 1
	case opIstore1:
		f.StoreInt32(1, f.PopInt32())
		f.PC = base + 1
	case opIstore2:
		f.StoreInt32(2, f.PopInt32())
		f.PC = base + 1
	case opIstore3:
		f.StoreInt32(3, f.PopInt32())
		f.PC = base + 1

	case opLstore:
		i := int(code[base+1])
		f.StoreInt64(i, f.PopInt64())
		f.PC = base + 2
	case opLstore0:
		f.StoreInt64(0, f.PopInt64())
		f.PC = base + 1
	case opLstore1:
		f.StoreInt64(1, f.PopInt64())
		f.PC = base + 1
	case opLstore2:
		f.StoreInt64(2, f.PopInt64())
		f.PC = base + 1
	case opLstore3:
		f.StoreInt64(3, f.PopInt64())
		f.PC = base + 1

	case opAstore:
		i := int(code[base+1])
		f.StoreRef(i, f.PopRef())
		f.PC = base + 2
	case opAstore0:
		f.StoreRef(0, f.PopRef())
		f.PC = base + 1
	case opAstore1:
		f.StoreRef(1, f.PopRef())
		f.PC = base + 1
	case opAstore2:
		f.StoreRef(2, f.PopRef())
		f.PC = base + 1
	case opAstore3:
		f.StoreRef(3, f.PopRef())
		f.PC = base + 1

	case opIaload:
		if err := rt.doIaload(f); err != nil {
			return err
		}
		f.PC = base + 1
	case opCaload:
		if err := rt.doCaload(f); err != nil {
			return err
		}
		f.PC = base + 1
	case opIastore:
		if err := rt.doIastore(f); err != nil {
			return err
		}
		f.PC = base + 1
	case opCastore:
		if err := rt.doCastore(f); err != nil {
			return err
		}
		f.PC = base + 1

	case opPop:
		f.PopInt32()
		f.PC = base + 1
	case opDup:
		f.PushInt32(f.PeekInt32())
		f.PC = base + 1

	case opIadd:
		rt.doIadd(f)
		f.PC = base + 1
	case opIsub:
		rt.doIsub(f)
		f.PC = base + 1
	case opImul:
		rt.doImul(f)
		f.PC = base + 1
	case opIdiv:
		if err := rt.doIdiv(f); err != nil {
			return err
		}
		f.PC = base + 1
	case opIrem:
		if err := rt.doIrem(f); err != nil {
			return err
		}
		f.PC = base + 1
	case opIneg:
		rt.doIneg(f)
		f.PC = base + 1
	case opIshl:
		rt.doIshl(f)
		f.PC = base + 1
	case opIushr:
		rt.doIushr(f)
		f.PC = base + 1
	case opIand:
		rt.doIand(f)
		f.PC = base + 1
	case opIor:
		rt.doIor(f)
		f.PC = base + 1
	case opIxor:
		rt.doIxor(f)
		f.PC = base + 1

	case opLadd:
		rt.doLadd(f)
		f.PC = base + 1
	case opLsub:
		rt.doLsub(f)
		f.PC = base + 1
	case opLmul:
		rt.doLmul(f)
		f.PC = base + 1
	case opLdiv:
		if err := rt.doLdiv(f); err != nil {
			return err
		}
		f.PC = base + 1
	case opLrem:
		if err := rt.doLrem(f); err != nil {
			return err
		}
		f.PC = base + 1
	case opLneg:
		rt.doLneg(f)
		f.PC = base + 1
	case opLshl:
		rt.doLshl(f)
		f.PC = base + 1
	case opLushr:
		rt.doLushr(f)
		f.PC = base + 1
	case opLand:
		rt.doLand(f)
		f.PC = base + 1
	case opLor:
		rt.doLor(f)
		f.PC = base + 1
	case opLxor:
		rt.doLxor(f)
		f.PC = base + 1

	case opIinc:
		index := int(code[base+1])
		delta := int8(code[base+2])
		rt.doIinc(f, index, delta)
		f.PC = base + 3

	case opI2l:
		rt.doI2l(f)
		f.PC = base + 1
	case opL2i:
		rt.doL2i(f)
		f.PC = base + 1
	case opI2b:
		rt.doI2b(f)
		f.PC = base + 1
	case opI2c:
		rt.doI2c(f)
		f.PC = base + 1

	case opLcmp:
		rt.doLcmp(f)
		f.PC = base + 1

	case opIfeq:
		f.PC = branchIf(f.PopInt32() == 0, base, code)
	case opIfne:
		f.PC = branchIf(f.PopInt32() != 0, base, code)
	case opIflt:
		f.PC = branchIf(f.PopInt32() < 0, base, code)
	case opIfge:
		f.PC = branchIf(f.PopInt32() >= 0, base, code)
	case opIfgt:
		f.PC = branchIf(f.PopInt32() > 0, base, code)
	case opIfle:
		f.PC = branchIf(f.PopInt32() <= 0, base, code)

	case opIfIcmpeq:
		v2, v1 := f.PopInt32(), f.PopInt32()
		f.PC = branchIf(v1 == v2, base, code)
	case opIfIcmpne:
		v2, v1 := f.PopInt32(), f.PopInt32()
		f.PC = branchIf(v1 != v2, base, code)
	case opIfIcmplt:
		v2, v1 := f.PopInt32(), f.PopInt32()
		f.PC = branchIf(v1 < v2, base, code)
	case opIfIcmpge:
		v2, v1 := f.PopInt32(), f.PopInt32()
		f.PC = branchIf(v1 >= v2, base, code)
	case opIfIcmpgt:
		v2, v1 := f.PopInt32(), f.PopInt32()
		f.PC = branchIf(v1 > v2, base, code)
	case opIfIcmple:
		v2, v1 := f.PopInt32(), f.PopInt32()
		f.PC = branchIf(v1 <= v2, base, code)

	case opGoto:
		f.PC = branchIf(true, base, code)

	case opIfnull:
		f.PC = branchIf(f.PopRef() == 0, base, code)
	case opIfnonnull:
		f.PC = branchIf(f.PopRef() != 0, base, code)

	case opNewarray:
		atype := code[base+1]
		f.PC = base + 2
		if err := rt.doNewarray(f, atype); err != nil {
			return err
		}
	case opArraylength:
		if err := rt.doArraylength(f); err != nil {
			return err
		}
		f.PC = base + 1

	case opNew:
		idx := int(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PC = base + 3
		ref, err := rt.instantiate(f.Loc.Class, idx)
		if err != nil {
			return err
		}
		f.PushRef(ref)

	case opGetstatic:
		idx := int(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PC = base + 3
		if err := rt.doGetstatic(f, idx); err != nil {
			return err
		}
	case opPutstatic:
		idx := int(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PC = base + 3
		if err := rt.doPutstatic(f, idx); err != nil {
			return err
		}
	case opGetfield:
		idx := int(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PC = base + 3
		if err := rt.doGetfield(f, idx); err != nil {
			return err
		}
	case opPutfield:
		idx := int(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PC = base + 3
		if err := rt.doPutfield(f, idx); err != nil {
			return err
		}

	case opInvokevirtual:
		idx := int(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PC = base + 3
		if err := rt.doInvoke(f, idx, true); err != nil {
			return err
		}
	case opInvokespecial:
		idx := int(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PC = base + 3
		if err := rt.doInvoke(f, idx, true); err != nil {
			return err
		}
	case opInvokestatic:
		idx := int(binary.BigEndian.Uint16(code[base+1 : base+3]))
		f.PC = base + 3
		if err := rt.doInvoke(f, idx, false); err != nil {
			return err
		}

	case opIreturn:
		v := f.PopInt32()
		rt.PopFrame()
		if !rt.Empty() {
			rt.TopFrame().PushInt32(v)
		}
	case opLreturn:
		v := f.PopInt64()
		rt.PopFrame()
		if !rt.Empty() {
			rt.TopFrame().PushInt64(v)
		}
	case opFreturn:
		v := f.PopInt32()
		rt.PopFrame()
		if !rt.Empty() {
			rt.TopFrame().PushInt32(v)
		}
	case opDreturn:
		v := f.PopInt64()
		rt.PopFrame()
		if !rt.Empty() {
			rt.TopFrame().PushInt64(v)
		}
	case opAreturn:
		v := f.PopRef()
		rt.PopFrame()
		if !rt.Empty() {
			rt.TopFrame().PushRef(v)
		}
	case opReturn:
		rt.PopFrame()

	default:
		return Trap(MalformedClassFile, "unimplemented opcode 0x%02x at %s.%s pc %d", op, f.Loc.ClassName, f.Loc.MethodName, base)
	}
	return nil
}

// branchIf recomputes a 2-byte-offset branch target relative to the
// opcode's own starting position: next_pc = base + offset when taken,
// base + 3 (the already-consumed opcode+operand width) when not.
func branchIf(taken bool, base int, code []byte) int {
	if !taken {
		return base + 3
	}
	offset := int16(binary.BigEndian.Uint16(code[base+1 : base+3]))
	return base + int(offset)
}

// doLdc implements ldc(1-byte pool index): string literals push the
// already-interned string-pool reference, tag-3 integers push their value,
// tag-4 floats push the IEEE-754 bit pattern. Any other tag is an error.
func (rt *Runtime) doLdc(f *Frame, idx int) error {
	raw, ok := f.Loc.Class.ConstantAt(idx)
	if !ok {
		return Trap(IllegalOperand, "ldc: constant pool index %d out of range", idx)
	}
	switch raw.Tag {
	case classfile.TagString, classfile.TagUtf8:
		content, ok := f.Loc.Class.GetConstant(idx)
		if !ok {
			return Trap(IllegalOperand, "ldc: unresolvable string constant at %d", idx)
		}
		s := content.Utf8()
		ref, interned := rt.StringPool[s]
		if !interned {
			return Trap(LinkError, "ldc: string literal %q not yet interned", s)
		}
		f.PushRef(ref)
	case classfile.TagInteger:
		f.PushInt32(raw.Int32())
	case classfile.TagFloat:
		f.PushInt32(int32(math.Float32bits(raw.Float32())))
	default:
		return Trap(IllegalOperand, "ldc: unsupported constant tag %d at index %d", raw.Tag, idx)
	}
	return nil
}

// doLdc2W implements ldc2_w(2-byte pool index): tag-5 longs push their
// value across two cells; tag-6 doubles push their bit pattern the same way.
func (rt *Runtime) doLdc2W(f *Frame, idx int) error {
	raw, ok := f.Loc.Class.ConstantAt(idx)
	if !ok {
		return Trap(IllegalOperand, "ldc2_w: constant pool index %d out of range", idx)
	}
	switch raw.Tag {
	case classfile.TagLong:
		f.PushInt64(raw.Int64())
	case classfile.TagDouble:
		f.PushInt64(int64(math.Float64bits(raw.Float64())))
	default:
		return Trap(IllegalOperand, "ldc2_w: unsupported constant tag %d at index %d", raw.Tag, idx)
	}
	return nil
}
