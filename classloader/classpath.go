package classloader

import (
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// readClassBytes resolves classname.class against one classpath root and
// reads it. Fallback rule: if the primary path can't be opened and it
// doesn't already start with ".", retry once at "./{basename}".
func readClassBytes(classpathRoot, relPath string) ([]byte, error) {
	full := classpathRoot + "/" + relPath
	data, err := os.ReadFile(full)
	if err == nil {
		return data, nil
	}
	if !strings.HasPrefix(full, ".") {
		fallback := "./" + path.Base(full)
		if data, ferr := os.ReadFile(fallback); ferr == nil {
			return data, nil
		}
	}
	return nil, errors.Wrapf(err, "could not find %s on classpath", relPath)
}

// readClassFromRoots tries each configured classpath root in order,
// returning the first successful read.
func readClassFromRoots(roots []string, className string) ([]byte, error) {
	relPath := className + ".class"
	var lastErr error
	for _, root := range roots {
		data, err := readClassBytes(root, relPath)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.Errorf("no classpath roots configured")
	}
	return nil, lastErr
}
