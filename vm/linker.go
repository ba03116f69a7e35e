package vm

import (
	"unicode/utf8"

	"minijvm/classfile"
	"minijvm/heap"
)

// loadAndLink loads className if not already cached, with no side effects
// beyond the loader cache itself. Callers that have a frame of their own to
// push first (invoke* opcodes) must push it before calling
// scheduleInitFrames; callers with no callee frame of their own (new,
// getstatic, putstatic — the current frame, already on the stack, plays
// that role) can go straight through ensureLoaded below.
func (rt *Runtime) loadAndLink(className string) (*classfile.Class, bool, error) {
	class, wasFirstTime, err := rt.Loader.LoadClass(className)
	if err != nil {
		return nil, false, Trap(LinkError, "could not load class %s: %v", className, err)
	}
	return class, wasFirstTime, nil
}

// scheduleInitFrames pushes, in order, the <clinit> frame then the
// string-pool-feed frames for a freshly-loaded class. Pushed in that order
// on top of whatever callee/continuation frame already sits on the stack,
// this yields the LIFO pop order string-pool-feed -> <clinit> -> callee.
// Every opcode that can trigger a load funnels through here; the ordering
// is load-bearing and must not be duplicated at call sites.
func (rt *Runtime) scheduleInitFrames(class *classfile.Class, className string, wasFirstTime bool) error {
	if !wasFirstTime {
		return nil
	}
	rt.Log.Debugf("first load of %s: scheduling init frames", className)
	if err := rt.addClinitFrame(class, className); err != nil {
		return err
	}
	if err := rt.addStringPoolFeedFrames(class); err != nil {
		return err
	}
	return nil
}

// ensureLoaded is the helper used by opcodes that execute within the
// current, already-on-stack frame (new, getstatic, putstatic): it loads the
// class and immediately schedules its init frames on top of the current
// frame, which plays the role of "callee" implicitly since it never left
// the stack.
func (rt *Runtime) ensureLoaded(className string) (*classfile.Class, error) {
	class, wasFirstTime, err := rt.loadAndLink(className)
	if err != nil {
		return nil, err
	}
	if err := rt.scheduleInitFrames(class, className, wasFirstTime); err != nil {
		return nil, err
	}
	return class, nil
}

// addClinitFrame pushes a frame for <clinit>:()V if the class declares one.
func (rt *Runtime) addClinitFrame(class *classfile.Class, className string) error {
	m, ok := class.FindMethod("<clinit>", "()V")
	if !ok || m.Code == nil {
		return nil
	}
	loc := Location{Class: class, ClassName: className, Method: m, MethodName: "<clinit>", Descriptor: "()V"}
	frame := NewFrame(loc, int(m.Code.MaxLocals), int(m.Code.MaxStack))
	rt.PushFrame(frame)
	return nil
}

// addStringPoolFeedFrames walks class's constant pool; for every tag-8
// entry whose underlying UTF-8 is not yet interned, it allocates a String
// instance and a backing [C array, interns the reference, and pushes a
// frame for java/lang/String.<init>([C)V to finish constructing it.
func (rt *Runtime) addStringPoolFeedFrames(class *classfile.Class) error {
	// java/lang/String is only pulled in once the first literal actually
	// needs interning, so classes without string constants never force it
	// onto the classpath.
	var stringClass *classfile.Class
	var fieldIDs []string
	var initMethod *classfile.MethodInfo

	for i := 1; i < len(class.ConstantPool); i++ {
		if class.ConstantPool[i].Tag != classfile.TagString {
			continue
		}
		resolved, ok := class.GetConstant(i)
		if !ok {
			continue
		}
		content := resolved.Utf8()
		if _, interned := rt.StringPool[content]; interned {
			continue
		}

		if stringClass == nil {
			var err error
			stringClass, _, err = rt.Loader.LoadClass("java/lang/String")
			if err != nil {
				return Trap(LinkError, "could not load java/lang/String: %v", err)
			}
			fieldIDs = instanceFieldIDs(stringClass)
			var ok bool
			initMethod, ok = stringClass.FindMethod("<init>", "([C)V")
			if !ok || initMethod.Code == nil {
				return Trap(LinkError, "java/lang/String is missing <init>([C)V")
			}
		}

		objRef := rt.Heap.AllocateObject("java/lang/String", fieldIDs)
		runeCount := utf8.RuneCountInString(content)
		arrRef, err := rt.Heap.AllocateArray(heap.ATypeChar, runeCount)
		if err != nil {
			return Trap(IllegalOperand, "allocating char array for string literal: %v", err)
		}
		arrObj, err := rt.Heap.GetObject(arrRef)
		if err != nil {
			return err
		}
		j := 0
		for _, r := range content {
			arrObj.Cells[j] = int32(r)
			j++
		}

		rt.StringPool[content] = objRef

		loc := Location{
			Class:      stringClass,
			ClassName:  "java/lang/String",
			Method:     initMethod,
			MethodName: "<init>",
			Descriptor: "([C)V",
		}
		frame := NewFrame(loc, int(initMethod.Code.MaxLocals), int(initMethod.Code.MaxStack))
		frame.StoreRef(0, objRef)
		frame.StoreRef(1, arrRef)
		rt.PushFrame(frame)
	}
	return nil
}

// instanceFieldIDs returns the "name:descriptor" ids of class's non-static
// fields, in declaration order, used both to materialize a fresh instance
// and (by the interpreter's field opcodes) to index into it consistently.
func instanceFieldIDs(class *classfile.Class) []string {
	var ids []string
	for i := range class.Fields {
		f := &class.Fields[i]
		if f.IsStatic() {
			continue
		}
		name, _ := class.Utf8At(int(f.NameIndex))
		desc, _ := class.Utf8At(int(f.DescriptorIndex))
		ids = append(ids, name+":"+desc)
	}
	return ids
}

// instantiateObject ensures className is loaded and initialized, then
// allocates a fresh zero-initialized instance and returns its ref.
func (rt *Runtime) instantiateObject(className string) (heap.Ref, error) {
	class, err := rt.ensureLoaded(className)
	if err != nil {
		return heap.Null, err
	}
	return rt.Heap.AllocateObject(className, instanceFieldIDs(class)), nil
}
