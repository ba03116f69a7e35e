package classfile

import "encoding/binary"

// Builder assembles a constant pool incrementally, interning UTF-8 entries
// so repeated names/descriptors share one slot, the way a real compiler's
// class writer would. It exists purely to manufacture fixture class files
// for tests (the standard-library stubs under `api/`, and small synthetic
// programs exercising the interpreter end to end) without hand-writing
// binary `.class` bytes.
type Builder struct {
	pool      []Constant
	utf8Index map[string]int
}

// NewBuilder returns an empty Builder with the reserved index-0 slot.
func NewBuilder() *Builder {
	return &Builder{pool: []Constant{{}}, utf8Index: make(map[string]int)}
}

func u16bytes(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// Utf8 interns s and returns its pool index.
func (b *Builder) Utf8(s string) int {
	if idx, ok := b.utf8Index[s]; ok {
		return idx
	}
	b.pool = append(b.pool, Constant{Tag: TagUtf8, Bytes: []byte(s)})
	idx := len(b.pool) - 1
	b.utf8Index[s] = idx
	return idx
}

// Class adds a tag-7 Class constant naming binaryName and returns its index.
func (b *Builder) Class(binaryName string) int {
	nameIdx := b.Utf8(binaryName)
	b.pool = append(b.pool, Constant{Tag: TagClass, Bytes: u16bytes(uint16(nameIdx))})
	return len(b.pool) - 1
}

// StringConst adds a tag-8 String constant for literal and returns its index.
func (b *Builder) StringConst(literal string) int {
	utfIdx := b.Utf8(literal)
	b.pool = append(b.pool, Constant{Tag: TagString, Bytes: u16bytes(uint16(utfIdx))})
	return len(b.pool) - 1
}

// IntegerConst adds a tag-3 Integer constant and returns its index.
func (b *Builder) IntegerConst(v int32) int {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v))
	b.pool = append(b.pool, Constant{Tag: TagInteger, Bytes: buf})
	return len(b.pool) - 1
}

// LongConst adds a tag-5 Long constant (occupying two pool slots, per the
// decoder's own two-slot rule) and returns the index of the first slot.
func (b *Builder) LongConst(v int64) int {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	b.pool = append(b.pool, Constant{Tag: TagLong, Bytes: buf})
	idx := len(b.pool) - 1
	b.pool = append(b.pool, Constant{}) // reserved slot
	return idx
}

// NameAndType adds a tag-12 entry and returns its index.
func (b *Builder) NameAndType(name, descriptor string) int {
	nameIdx := b.Utf8(name)
	descIdx := b.Utf8(descriptor)
	buf := append(u16bytes(uint16(nameIdx)), u16bytes(uint16(descIdx))...)
	b.pool = append(b.pool, Constant{Tag: TagNameAndType, Bytes: buf})
	return len(b.pool) - 1
}

// Fieldref adds a tag-9 entry referencing className's (name, descriptor)
// field and returns its index.
func (b *Builder) Fieldref(className, name, descriptor string) int {
	return b.ref(TagFieldref, className, name, descriptor)
}

// Methodref adds a tag-10 entry referencing className's (name, descriptor)
// method and returns its index.
func (b *Builder) Methodref(className, name, descriptor string) int {
	return b.ref(TagMethodref, className, name, descriptor)
}

func (b *Builder) ref(tag uint8, className, name, descriptor string) int {
	classIdx := b.Class(className)
	ntIdx := b.NameAndType(name, descriptor)
	buf := append(u16bytes(uint16(classIdx)), u16bytes(uint16(ntIdx))...)
	b.pool = append(b.pool, Constant{Tag: tag, Bytes: buf})
	return len(b.pool) - 1
}

// FieldSpec describes one field to be encoded by EncodeClass.
type FieldSpec struct {
	Name        string
	Descriptor  string
	AccessFlags uint16
}

// MethodSpec describes one method to be encoded by EncodeClass. Code is nil
// for native/abstract methods (no Code attribute is emitted).
type MethodSpec struct {
	Name        string
	Descriptor  string
	AccessFlags uint16
	MaxStack    uint16
	MaxLocals   uint16
	Code        []byte
}

// EncodeClass serializes a complete class file byte-for-byte compatible
// with Decode, from a Builder's pool plus the class-level shape. interfaces
// and class-level attributes are always empty, matching every fixture this
// interpreter needs.
func EncodeClass(b *Builder, thisClass, superClass int, accessFlags uint16, fields []FieldSpec, methods []MethodSpec) []byte {
	// Intern every name/descriptor/attribute-name UTF-8 the fields and
	// methods sections will reference *before* the pool itself is
	// serialized below, so no new pool entry is created after the
	// constant_pool_count and entries have already been written out.
	for _, f := range fields {
		b.Utf8(f.Name)
		b.Utf8(f.Descriptor)
	}
	for _, m := range methods {
		b.Utf8(m.Name)
		b.Utf8(m.Descriptor)
		if m.Code != nil {
			b.Utf8("Code")
		}
	}

	var out []byte
	put16 := func(v uint16) { out = append(out, u16bytes(v)...) }
	put32 := func(v uint32) {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, v)
		out = append(out, buf...)
	}

	put32(Magic)
	put16(0) // minor
	put16(7) // major

	put16(uint16(len(b.pool)))
	for i := 1; i < len(b.pool); i++ {
		c := b.pool[i]
		if c.Tag == 0 {
			continue // reserved slot following a Long/Double
		}
		out = append(out, c.Tag)
		if c.Tag == TagUtf8 {
			put16(uint16(len(c.Bytes)))
		}
		out = append(out, c.Bytes...)
	}

	put16(accessFlags)
	put16(uint16(thisClass))
	put16(uint16(superClass))
	put16(0) // interfaces_count

	put16(uint16(len(fields)))
	for _, f := range fields {
		put16(f.AccessFlags)
		put16(uint16(b.Utf8(f.Name)))
		put16(uint16(b.Utf8(f.Descriptor)))
		put16(0) // attributes_count
	}

	put16(uint16(len(methods)))
	for _, m := range methods {
		put16(m.AccessFlags)
		put16(uint16(b.Utf8(m.Name)))
		put16(uint16(b.Utf8(m.Descriptor)))
		if m.Code == nil {
			put16(0) // attributes_count
			continue
		}
		put16(1) // attributes_count
		put16(uint16(b.Utf8("Code")))
		codeAttrLen := 2 + 2 + 4 + len(m.Code)
		put32(uint32(codeAttrLen))
		put16(m.MaxStack)
		put16(m.MaxLocals)
		put32(uint32(len(m.Code)))
		out = append(out, m.Code...)
	}

	put16(0) // class attributes_count
	return out
}
