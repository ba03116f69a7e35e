package classfile

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBigEndianReader(t *testing.T) {
	b := []byte{0x00, 0x00, 0xCA, 0xFE, 0xBA, 0xBE}
	got := binary.BigEndian.Uint32(b[2:6])
	require.EqualValues(t, 0xCAFEBABE, got)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestDecodeRoundTripsEncodedFixture(t *testing.T) {
	b := NewBuilder()
	thisClass := b.Class("demo/Hello")
	superClass := b.Class("java/lang/Object")

	fields := []FieldSpec{
		{Name: "count", Descriptor: "I", AccessFlags: 0},
	}
	methods := []MethodSpec{
		{
			Name: "<init>", Descriptor: "()V", AccessFlags: 0,
			MaxStack: 1, MaxLocals: 1,
			Code: []byte{0x2a, 0xb1}, // aload_0; return
		},
		{
			Name: "main", Descriptor: "([Ljava/lang/String;)V", AccessFlags: AccStatic,
			MaxStack: 2, MaxLocals: 1,
			Code: []byte{0xb1}, // return
		},
	}

	raw := EncodeClass(b, thisClass, superClass, 0, fields, methods)
	class, err := Decode(raw)
	require.NoError(t, err)

	name, ok := class.Name()
	require.True(t, ok)
	require.Equal(t, "demo/Hello", name)

	superName, ok := class.SuperName()
	require.True(t, ok)
	require.Equal(t, "java/lang/Object", superName)

	require.Len(t, class.Fields, 1)
	fieldName, _ := class.Utf8At(int(class.Fields[0].NameIndex))
	require.Equal(t, "count", fieldName)

	m, ok := class.FindMethod("main", "([Ljava/lang/String;)V")
	require.True(t, ok)
	require.NotNil(t, m.Code)
	require.Equal(t, []byte{0xb1}, m.Code.Code)
	require.True(t, m.IsStatic())

	ctor, ok := class.FindMethod("<init>", "()V")
	require.True(t, ok)
	require.Equal(t, []byte{0x2a, 0xb1}, ctor.Code.Code)
}

// constant pool invariant: index 0 unused, and a tag-5/6 entry reserves the
// following slot.
func TestConstantPoolReservedSlotAfterWideEntry(t *testing.T) {
	b := NewBuilder()
	longIdx := b.LongConst(42)
	thisClass := b.Class("demo/Wide")
	superClass := b.Class("java/lang/Object")
	methods := []MethodSpec{
		{Name: "<init>", Descriptor: "()V", MaxStack: 1, MaxLocals: 1, Code: []byte{0xb1}},
	}
	raw := EncodeClass(b, thisClass, superClass, 0, nil, methods)
	class, err := Decode(raw)
	require.NoError(t, err)

	require.Equal(t, uint8(TagLong), class.ConstantPool[longIdx].Tag)
	require.Equal(t, uint8(0), class.ConstantPool[longIdx+1].Tag)

	entry, ok := class.ConstantAt(longIdx)
	require.True(t, ok)
	require.EqualValues(t, 42, entry.Int64())
}
