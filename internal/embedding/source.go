package embedding

import (
	"fmt"
	"os"
	"path/filepath"
)

// SourceOf identifies the table file at path by its absolute path, size and
// modification time. Two calls agree only while the file is left untouched.
func SourceOf(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &ResourceError{Path: path, Err: err}
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", &ResourceError{Path: path, Err: err}
	}
	return fmt.Sprintf("%s|%d|%d", abs, fi.Size(), fi.ModTime().UnixNano()), nil
}
