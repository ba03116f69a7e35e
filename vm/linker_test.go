package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"minijvm/classfile"
	"minijvm/heap"
)

// buildSystemFixture emits java/lang/System with a static
// out:Ljava/io/PrintStream; field populated by <clinit> via new + putstatic.
func buildSystemFixture() []byte {
	b := classfile.NewBuilder()
	thisClass := b.Class("java/lang/System")
	psClass := b.Class("java/io/PrintStream")
	outRef := b.Fieldref("java/lang/System", "out", "Ljava/io/PrintStream;")
	pHi, pLo := be16(psClass)
	oHi, oLo := be16(outRef)

	clinit := []byte{
		0xbb, pHi, pLo, // new PrintStream
		0xb3, oHi, oLo, // putstatic out
		0xb1, // return
	}
	fields := []classfile.FieldSpec{
		{Name: "out", Descriptor: "Ljava/io/PrintStream;", AccessFlags: classfile.AccStatic},
	}
	methods := []classfile.MethodSpec{
		{Name: "<clinit>", Descriptor: "()V", AccessFlags: classfile.AccStatic, MaxStack: 1, MaxLocals: 0, Code: clinit},
	}
	return classfile.EncodeClass(b, thisClass, 0, 0, fields, methods)
}

// buildCounterFixture emits demo/Counter with a static ticks:I incremented by
// <clinit>, so a test can count how many times initialization actually ran.
func buildCounterFixture() []byte {
	b := classfile.NewBuilder()
	thisClass := b.Class("demo/Counter")
	ticksRef := b.Fieldref("demo/Counter", "ticks", "I")
	tHi, tLo := be16(ticksRef)

	clinit := []byte{
		0xb2, tHi, tLo, // getstatic ticks
		0x04,           // iconst_1
		0x60,           // iadd
		0xb3, tHi, tLo, // putstatic ticks
		0xb1, // return
	}
	fields := []classfile.FieldSpec{
		{Name: "ticks", Descriptor: "I", AccessFlags: classfile.AccStatic},
	}
	methods := []classfile.MethodSpec{
		{Name: "<clinit>", Descriptor: "()V", AccessFlags: classfile.AccStatic, MaxStack: 2, MaxLocals: 0, Code: clinit},
	}
	return classfile.EncodeClass(b, thisClass, 0, 0, fields, methods)
}

// TestEndToEndSystemOut drives the getstatic System.out shape: <clinit> runs
// new + putstatic on first touch, and the program's write still prints. The
// first-touch getstatic reads out before <clinit> has run, so the receiver
// passed to write is null; the native never dereferences it.
func TestEndToEndSystemOut(t *testing.T) {
	root := fixtureClasspath(t)
	writeClassFile(t, root, "java/lang/System", buildSystemFixture())

	cb := newClassBuild()
	thisClass := cb.b.Class("SystemOut")
	outRef := cb.b.Fieldref("java/lang/System", "out", "Ljava/io/PrintStream;")
	oHi, oLo := be16(outRef)
	vHi, vLo := be16(cb.valueOfRef)
	wHi, wLo := be16(cb.writeRef)

	code := []byte{
		0xb2, oHi, oLo, // getstatic System.out
		0x10, 0x05,     // bipush 5
		0xb8, vHi, vLo, // invokestatic Integer.valueOf
		0xb6, wHi, wLo, // invokevirtual PrintStream.write
		0xb1, // return
	}
	methods := []classfile.MethodSpec{
		{Name: "main", Descriptor: "([Ljava/lang/String;)V", AccessFlags: classfile.AccStatic, MaxStack: 2, MaxLocals: 1, Code: code},
	}
	raw := classfile.EncodeClass(cb.b, thisClass, 0, 0, nil, methods)

	out := runMain(t, root, "SystemOut", raw)
	require.Equal(t, "5", out)
}

// TestClinitRunsExactlyOnce touches the same class's statics twice: <clinit>
// must run on the first touch only, leaving ticks at 1.
func TestClinitRunsExactlyOnce(t *testing.T) {
	root := fixtureClasspath(t)
	writeClassFile(t, root, "demo/Counter", buildCounterFixture())

	b := classfile.NewBuilder()
	thisClass := b.Class("TouchTwice")
	ticksRef := b.Fieldref("demo/Counter", "ticks", "I")
	tHi, tLo := be16(ticksRef)

	code := []byte{
		0xb2, tHi, tLo, // getstatic ticks (first touch: schedules <clinit>)
		0x57,           // pop
		0xb2, tHi, tLo, // getstatic ticks (cached class, no re-init)
		0x57, // pop
		0xb1, // return
	}
	methods := []classfile.MethodSpec{
		{Name: "main", Descriptor: "([Ljava/lang/String;)V", AccessFlags: classfile.AccStatic, MaxStack: 1, MaxLocals: 1, Code: code},
	}
	raw := classfile.EncodeClass(b, thisClass, 0, 0, nil, methods)
	class, err := classfile.Decode(raw)
	require.NoError(t, err)

	rt := newTestRuntime(root)
	require.NoError(t, rt.Start("TouchTwice", class))

	counter, ok := rt.Loader.FindLoadedClass("demo/Counter")
	require.True(t, ok)
	field, _, ok := counter.FindField("ticks", "I")
	require.True(t, ok)
	require.EqualValues(t, 1, field.Value)
}

// TestStringPoolEndsWithSingleEntry runs an ldc of one literal and checks the
// pool's shape afterwards: exactly one entry, a real java/lang/String whose
// value:[C backs its count:I.
func TestStringPoolEndsWithSingleEntry(t *testing.T) {
	root := fixtureClasspath(t)
	cb := newClassBuild()
	thisClass := cb.b.Class("OneLiteral")
	litIdx := cb.b.StringConst("hi")
	wHi, wLo := be16(cb.writeRef)
	pHi, pLo := be16(cb.psClassIdx)

	code := []byte{
		0xbb, pHi, pLo, // new PrintStream
		0x12, byte(litIdx), // ldc "hi"
		0xb6, wHi, wLo, // invokevirtual PrintStream.write
		0xb1,
	}
	methods := []classfile.MethodSpec{
		{Name: "main", Descriptor: "([Ljava/lang/String;)V", AccessFlags: classfile.AccStatic, MaxStack: 2, MaxLocals: 1, Code: code},
	}
	raw := classfile.EncodeClass(cb.b, thisClass, 0, 0, nil, methods)
	class, err := classfile.Decode(raw)
	require.NoError(t, err)

	rt := newTestRuntime(root)
	out := captureStdout(t, func() {
		require.NoError(t, rt.Start("OneLiteral", class))
	})
	require.Equal(t, "hi", out)

	require.Len(t, rt.StringPool, 1)
	ref, ok := rt.StringPool["hi"]
	require.True(t, ok)
	require.NotZero(t, ref)

	obj, err := rt.Heap.GetObject(ref)
	require.NoError(t, err)
	require.Equal(t, "java/lang/String", obj.Typename)

	countField, ok := obj.Field("count:I")
	require.True(t, ok)
	valueField, ok := obj.Field("value:[C")
	require.True(t, ok)
	arr, err := rt.Heap.GetObject(heap.Ref(valueField.Value))
	require.NoError(t, err)
	require.True(t, arr.IsArray)
	require.GreaterOrEqual(t, int64(len(arr.Cells)), countField.Value)
	require.EqualValues(t, 2, countField.Value)
	require.EqualValues(t, 'h', arr.Cells[0])
	require.EqualValues(t, 'i', arr.Cells[1])
}

// TestEnsureLoadedSchedulesInitOnlyOnce calls ensureLoaded twice for a class
// with a <clinit> and checks the second call pushes nothing.
func TestEnsureLoadedSchedulesInitOnlyOnce(t *testing.T) {
	root := fixtureClasspath(t)
	writeClassFile(t, root, "demo/Counter", buildCounterFixture())
	rt := newTestRuntime(root)

	_, err := rt.ensureLoaded("demo/Counter")
	require.NoError(t, err)
	require.Len(t, rt.Frames, 1) // the <clinit> frame

	_, err = rt.ensureLoaded("demo/Counter")
	require.NoError(t, err)
	require.Len(t, rt.Frames, 1)
}
