package classloader

import (
	"sync"

	"minijvm/classfile"
)

// Loader maintains the binary-name -> decoded Class cache and resolves new
// classes against a configured set of classpath roots.
type Loader struct {
	mu     sync.Mutex
	roots  []string
	loaded map[string]*classfile.Class
}

// New builds a Loader that resolves classes under the given classpath
// roots, tried in order. A caller with no special configuration should pass
// []string{"api"}, matching the single logical classpath root.
func New(roots []string) *Loader {
	return &Loader{
		roots:  roots,
		loaded: make(map[string]*classfile.Class),
	}
}

// FindLoadedClass returns the cached entry for className, if any.
func (l *Loader) FindLoadedClass(className string) (*classfile.Class, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.loaded[className]
	return c, ok
}

// Preload registers an already-decoded class under className, for callers
// that obtained the bytes outside the classpath (the CLI reads the entry
// class file directly rather than resolving it through the loader). Returns
// whether this was the first registration, exactly like LoadClass's
// wasFirstTime, so the caller can still schedule init frames consistently.
func (l *Loader) Preload(className string, class *classfile.Class) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.loaded[className]; ok {
		return false
	}
	l.loaded[className] = class
	return true
}

// LoadClass resolves, reads, and decodes className if not already cached.
// wasFirstTime reports whether this call actually performed the load (as
// opposed to returning an already-cached class), which callers use to
// decide whether to run static initialization and string-pool population.
func (l *Loader) LoadClass(className string) (class *classfile.Class, wasFirstTime bool, err error) {
	l.mu.Lock()
	if c, ok := l.loaded[className]; ok {
		l.mu.Unlock()
		return c, false, nil
	}
	l.mu.Unlock()

	data, err := readClassFromRoots(l.roots, className)
	if err != nil {
		return nil, false, err
	}
	decoded, err := classfile.Decode(data)
	if err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.loaded[className]; ok {
		// Lost the race against a concurrent loader; the runtime is
		// single-threaded in practice, but keep this safe regardless.
		return c, false, nil
	}
	l.loaded[className] = decoded
	return decoded, true, nil
}
