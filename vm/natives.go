package vm

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"minijvm/heap"
)

// NativeFunc is the signature every bridged native method implements. It
// receives the caller's frame (to push a return value onto, if any), the
// receiver ref (nil for static natives), and the already-popped argument
// cells in descriptor order.
type NativeFunc func(rt *Runtime, caller *Frame, receiver *heap.Ref, args []int32) error

var nativeTable = map[string]NativeFunc{
	"java/io/PrintStream.write(Ljava/lang/String;)V": nativePrintStreamWrite,
	"java/lang/Integer.valueOf(I)Ljava/lang/String;":  nativeIntegerValueOf,
}

// callNative resolves and invokes a native, translating an unregistered key
// into the NoNativeImpl trap. Resolution is exhaustive by design: there is
// no fallback interpretation for an unknown key.
func (rt *Runtime) callNative(className, methodName, descriptor string, args []int32, receiver *heap.Ref) error {
	key := className + "." + methodName + descriptor
	fn, ok := nativeTable[key]
	if !ok {
		return Trap(NoNativeImpl, "no native implementation registered for %s", key)
	}
	caller := rt.TopFrame()
	return fn(rt, caller, receiver, args)
}

// nativePrintStreamWrite decodes args[0] (a reference to a java/lang/String
// instance) via its count:I/value:[C fields and writes it to standard
// output with no trailing newline.
func nativePrintStreamWrite(rt *Runtime, caller *Frame, receiver *heap.Ref, args []int32) error {
	s, err := rt.stringFromRef(heap.Ref(args[0]))
	if err != nil {
		return err
	}
	fmt.Print(s)
	return nil
}

// nativeIntegerValueOf converts an int argument to its base-10 string form,
// interns it (so write can later consume it), and pushes the reference
// back onto the caller's operand stack.
func nativeIntegerValueOf(rt *Runtime, caller *Frame, receiver *heap.Ref, args []int32) error {
	s := strconv.Itoa(int(args[0]))
	ref, err := rt.internString(s)
	if err != nil {
		return err
	}
	caller.PushRef(ref)
	return nil
}

// stringFromRef reconstructs a Go string from a java/lang/String instance's
// count:I and value:[C fields.
func (rt *Runtime) stringFromRef(ref heap.Ref) (string, error) {
	obj, err := rt.Heap.GetObject(ref)
	if err != nil {
		return "", err
	}
	valueField, ok := obj.Field("value:[C")
	if !ok {
		return "", Trap(IllegalOperand, "reference is not a java/lang/String instance: %s", obj.Typename)
	}
	arrObj, err := rt.Heap.GetObject(heap.Ref(valueField.Value))
	if err != nil {
		return "", err
	}
	count := len(arrObj.Cells)
	if countField, ok := obj.Field("count:I"); ok {
		count = int(countField.Value)
	}
	runes := make([]rune, count)
	for i := 0; i < count && i < len(arrObj.Cells); i++ {
		runes[i] = rune(arrObj.Cells[i])
	}
	return string(runes), nil
}

// internString returns the pooled ref for content, allocating and filling a
// fresh java/lang/String instance (without running any bytecode frame) if
// it isn't already interned. Used by natives, which must not push frames.
func (rt *Runtime) internString(content string) (heap.Ref, error) {
	if ref, ok := rt.StringPool[content]; ok {
		return ref, nil
	}
	stringClass, _, err := rt.Loader.LoadClass("java/lang/String")
	if err != nil {
		return heap.Null, Trap(LinkError, "could not load java/lang/String: %v", err)
	}
	fieldIDs := instanceFieldIDs(stringClass)
	objRef := rt.Heap.AllocateObject("java/lang/String", fieldIDs)

	runeCount := utf8.RuneCountInString(content)
	arrRef, err := rt.Heap.AllocateArray(heap.ATypeChar, runeCount)
	if err != nil {
		return heap.Null, Trap(IllegalOperand, "allocating char array: %v", err)
	}
	arrObj, err := rt.Heap.GetObject(arrRef)
	if err != nil {
		return heap.Null, err
	}
	i := 0
	for _, r := range content {
		arrObj.Cells[i] = int32(r)
		i++
	}

	obj, err := rt.Heap.GetObject(objRef)
	if err != nil {
		return heap.Null, err
	}
	if f, ok := obj.Field("value:[C"); ok {
		f.Value = int64(arrRef)
	}
	if f, ok := obj.Field("count:I"); ok {
		f.Value = int64(runeCount)
	}

	rt.StringPool[content] = objRef
	return objRef, nil
}
