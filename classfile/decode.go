package classfile

import "encoding/binary"

// reader is a small cursor over a byte slice with bounds-checked reads.
// Every multi-byte read is big-endian, as the class file format is
// throughout.
type reader struct {
	b   []byte
	pos int
}

func (r *reader) u8() (uint8, error) {
	if r.pos+1 > len(r.b) {
		return 0, malformed("truncated read at offset %d", r.pos)
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.pos+2 > len(r.b) {
		return 0, malformed("truncated read at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint16(r.b[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.pos+4 > len(r.b) {
		return 0, malformed("truncated read at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint32(r.b[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.b) {
		return nil, malformed("attribute length exceeds remaining bytes at offset %d", r.pos)
	}
	v := r.b[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// Decode parses a complete class file from raw bytes into a Class.
func Decode(data []byte) (*Class, error) {
	r := &reader{b: data}

	magic, err := r.u32()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, malformed("bad magic: got %#x, want %#x", magic, Magic)
	}
	if _, err := r.u16(); err != nil { // minor version
		return nil, err
	}
	if _, err := r.u16(); err != nil { // major version
		return nil, err
	}

	cpCount, err := r.u16()
	if err != nil {
		return nil, err
	}

	pool := make([]Constant, cpCount)
	skip := false
	for i := 1; i < int(cpCount); i++ {
		if skip {
			skip = false
			continue
		}
		tag, err := r.u8()
		if err != nil {
			return nil, err
		}
		var payload []byte
		switch tag {
		case TagUtf8:
			length, err := r.u16()
			if err != nil {
				return nil, err
			}
			payload, err = r.bytes(int(length))
			if err != nil {
				return nil, err
			}
		case TagInteger, TagFloat:
			payload, err = r.bytes(4)
			if err != nil {
				return nil, err
			}
		case TagLong, TagDouble:
			payload, err = r.bytes(8)
			if err != nil {
				return nil, err
			}
			skip = true
		case TagClass, TagString:
			payload, err = r.bytes(2)
			if err != nil {
				return nil, err
			}
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType:
			payload, err = r.bytes(4)
			if err != nil {
				return nil, err
			}
		default:
			return nil, malformed("unknown constant tag %d at pool index %d", tag, i)
		}
		pool[i] = Constant{Tag: tag, Bytes: payload}
	}

	class := &Class{ConstantPool: pool}

	if class.AccessFlags, err = r.u16(); err != nil {
		return nil, err
	}
	if class.ThisClass, err = r.u16(); err != nil {
		return nil, err
	}
	if class.SuperClass, err = r.u16(); err != nil {
		return nil, err
	}

	interfaceCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	class.Interfaces = make([]uint16, interfaceCount)
	for i := range class.Interfaces {
		if class.Interfaces[i], err = r.u16(); err != nil {
			return nil, err
		}
	}

	fieldsCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	class.Fields = make([]FieldInfo, fieldsCount)
	for i := range class.Fields {
		f := &class.Fields[i]
		if f.AccessFlags, err = r.u16(); err != nil {
			return nil, err
		}
		if f.NameIndex, err = r.u16(); err != nil {
			return nil, err
		}
		if f.DescriptorIndex, err = r.u16(); err != nil {
			return nil, err
		}
		if f.Attributes, err = decodeAttributes(r); err != nil {
			return nil, err
		}
	}

	methodsCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	class.Methods = make([]MethodInfo, methodsCount)
	for i := range class.Methods {
		m := &class.Methods[i]
		if m.AccessFlags, err = r.u16(); err != nil {
			return nil, err
		}
		if m.NameIndex, err = r.u16(); err != nil {
			return nil, err
		}
		if m.DescriptorIndex, err = r.u16(); err != nil {
			return nil, err
		}
		if m.Attributes, err = decodeAttributes(r); err != nil {
			return nil, err
		}
		for _, attr := range m.Attributes {
			name, ok := class.Utf8At(int(attr.NameIndex))
			if ok && name == "Code" {
				code, err := decodeCode(attr.Info)
				if err != nil {
					return nil, err
				}
				m.Code = code
			}
		}
	}

	if class.ClassAttributes, err = decodeAttributes(r); err != nil {
		return nil, err
	}

	return class, nil
}

func decodeAttributes(r *reader) ([]AttributeInfo, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		nameIndex, err := r.u16()
		if err != nil {
			return nil, err
		}
		length, err := r.u32()
		if err != nil {
			return nil, err
		}
		info, err := r.bytes(int(length))
		if err != nil {
			return nil, err
		}
		attrs[i] = AttributeInfo{NameIndex: nameIndex, Info: info}
	}
	return attrs, nil
}

// decodeCode unpacks a Code attribute's payload: 2-byte max_stack, 2-byte
// max_locals, 4-byte code length, then the raw bytecode. Exception tables
// and nested attributes follow in a real class file but are not read by
// this interpreter (no exceptions, no debug info).
func decodeCode(info []byte) (*CodeAttribute, error) {
	r := &reader{b: info}
	maxStack, err := r.u16()
	if err != nil {
		return nil, err
	}
	maxLocals, err := r.u16()
	if err != nil {
		return nil, err
	}
	codeLength, err := r.u32()
	if err != nil {
		return nil, err
	}
	code, err := r.bytes(int(codeLength))
	if err != nil {
		return nil, err
	}
	return &CodeAttribute{MaxStack: maxStack, MaxLocals: maxLocals, Code: code}, nil
}
