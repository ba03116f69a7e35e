package classfile

import "fmt"

// GetConstant returns the constant at index i, transparently dereferencing
// tag-7 (Class) and tag-8 (String) entries down to their underlying tag-1
// UTF-8 constant. This is the single behavioral contract every opcode that
// reads the pool relies on.
func (c *Class) GetConstant(i int) (Constant, bool) {
	if i < 1 || i >= len(c.ConstantPool) {
		return Constant{}, false
	}
	entry := c.ConstantPool[i]
	switch entry.Tag {
	case TagClass, TagString:
		return c.GetConstant(int(entry.NameIndex()))
	default:
		return entry, true
	}
}

// ConstantAt returns the raw constant at index i with no dereferencing, for
// callers that need the tag-7/8/9/10/11/12 structure itself (e.g. to split
// a method-ref into its class and name-and-type halves).
func (c *Class) ConstantAt(i int) (Constant, bool) {
	if i < 1 || i >= len(c.ConstantPool) {
		return Constant{}, false
	}
	return c.ConstantPool[i], true
}

// Utf8At resolves index i through GetConstant and returns it as a string.
func (c *Class) Utf8At(i int) (string, bool) {
	cst, ok := c.GetConstant(i)
	if !ok || cst.Tag != TagUtf8 {
		return "", false
	}
	return cst.Utf8(), true
}

// Name returns this class's own binary name.
func (c *Class) Name() (string, bool) {
	return c.Utf8At(int(c.ThisClass))
}

// SuperName returns the superclass's binary name, if any.
func (c *Class) SuperName() (string, bool) {
	if c.SuperClass == 0 {
		return "", false
	}
	return c.Utf8At(int(c.SuperClass))
}

// FindMethod does a linear scan matching on the UTF-8 rendering of the
// method's name and descriptor constants.
func (c *Class) FindMethod(name, descriptor string) (*MethodInfo, bool) {
	for i := range c.Methods {
		m := &c.Methods[i]
		n, ok := c.Utf8At(int(m.NameIndex))
		if !ok || n != name {
			continue
		}
		d, ok := c.Utf8At(int(m.DescriptorIndex))
		if !ok || d != descriptor {
			continue
		}
		return m, true
	}
	return nil, false
}

// FindField does a linear scan matching on the UTF-8 rendering of the
// field's name and descriptor constants.
func (c *Class) FindField(name, descriptor string) (*FieldInfo, int, bool) {
	for i := range c.Fields {
		f := &c.Fields[i]
		n, ok := c.Utf8At(int(f.NameIndex))
		if !ok || n != name {
			continue
		}
		d, ok := c.Utf8At(int(f.DescriptorIndex))
		if !ok || d != descriptor {
			continue
		}
		return f, i, true
	}
	return nil, -1, false
}

// ResolveFieldref splits a tag-9 (Fieldref) constant into the declaring
// class name, field name, and descriptor.
func (c *Class) ResolveFieldref(index int) (className, fieldName, descriptor string, err error) {
	return c.resolveRef(index, TagFieldref)
}

// ResolveMethodref splits a tag-10 (Methodref) constant into the declaring
// class name, method name, and descriptor.
func (c *Class) ResolveMethodref(index int) (className, methodName, descriptor string, err error) {
	return c.resolveRef(index, TagMethodref)
}

func (c *Class) resolveRef(index int, wantTag uint8) (string, string, string, error) {
	ref, ok := c.ConstantAt(index)
	if !ok || ref.Tag != wantTag {
		return "", "", "", fmt.Errorf("constant at index %d is not tag %d", index, wantTag)
	}
	classRef, ok := c.ConstantAt(int(ref.ClassIndex()))
	if !ok || classRef.Tag != TagClass {
		return "", "", "", fmt.Errorf("ref at index %d has invalid class index", index)
	}
	className, ok := c.Utf8At(int(classRef.NameIndex()))
	if !ok {
		return "", "", "", fmt.Errorf("ref at index %d has unresolvable class name", index)
	}
	nAndT, ok := c.ConstantAt(int(ref.NameAndTypeIndex()))
	if !ok || nAndT.Tag != TagNameAndType {
		return "", "", "", fmt.Errorf("ref at index %d has invalid name-and-type index", index)
	}
	name, ok := c.Utf8At(int(nAndT.DescNameIndex()))
	if !ok {
		return "", "", "", fmt.Errorf("ref at index %d has unresolvable name", index)
	}
	descriptor, ok := c.Utf8At(int(nAndT.DescTypeIndex()))
	if !ok {
		return "", "", "", fmt.Errorf("ref at index %d has unresolvable descriptor", index)
	}
	return className, name, descriptor, nil
}

// ClassNameAt resolves a tag-7 (Class) constant directly to its binary name,
// used by `new` and `anewarray`-style opcodes.
func (c *Class) ClassNameAt(index int) (string, error) {
	ref, ok := c.ConstantAt(index)
	if !ok || ref.Tag != TagClass {
		return "", fmt.Errorf("constant at index %d is not a class ref", index)
	}
	name, ok := c.Utf8At(int(ref.NameIndex()))
	if !ok {
		return "", fmt.Errorf("class ref at index %d has unresolvable name", index)
	}
	return name, nil
}
