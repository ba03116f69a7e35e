package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexZeroIsNullSentinel(t *testing.T) {
	h := New()
	require.Equal(t, 1, h.Len())

	obj, err := h.GetObject(Null)
	require.NoError(t, err)
	require.Equal(t, "java/lang/Object", obj.Typename)
	require.False(t, obj.IsArray)
}

func TestAllocateObjectZeroesFields(t *testing.T) {
	h := New()
	ref := h.AllocateObject("demo/Point", []string{"x:I", "y:I"})
	require.NotEqual(t, Null, ref)

	obj, err := h.GetObject(ref)
	require.NoError(t, err)
	require.Equal(t, "demo/Point", obj.Typename)

	x, ok := obj.Field("x:I")
	require.True(t, ok)
	require.Zero(t, x.Value)
	_, ok = obj.Field("z:I")
	require.False(t, ok)
}

func TestAllocateArrayMapsAtypeToTypename(t *testing.T) {
	h := New()
	cases := []struct {
		atype uint8
		want  string
	}{
		{ATypeBoolean, "[Z"},
		{ATypeChar, "[C"},
		{ATypeByte, "[B"},
		{ATypeShort, "[S"},
		{ATypeInt, "[I"},
	}
	for _, c := range cases {
		ref, err := h.AllocateArray(c.atype, 3)
		require.NoError(t, err)
		obj, err := h.GetObject(ref)
		require.NoError(t, err)
		require.Equal(t, c.want, obj.Typename)
		require.True(t, obj.IsArray)
		require.Equal(t, []int32{0, 0, 0}, obj.Cells)
	}
}

func TestAllocateArrayRejectsUnknownAtype(t *testing.T) {
	h := New()
	_, err := h.AllocateArray(7, 1) // 7 is the unsupported [D tag
	require.Error(t, err)
}

func TestGetObjectRejectsOutOfRangeRef(t *testing.T) {
	h := New()
	_, err := h.GetObject(Ref(99))
	require.Error(t, err)
	_, err = h.GetObject(Ref(-1))
	require.Error(t, err)
}

func TestRefsAreStableAcrossGrowth(t *testing.T) {
	h := New()
	first := h.AllocateObject("demo/A", nil)
	for i := 0; i < 100; i++ {
		h.AllocateObject("demo/B", nil)
	}
	obj, err := h.GetObject(first)
	require.NoError(t, err)
	require.Equal(t, "demo/A", obj.Typename)
}
