package file

import (
	"os"
	"path/filepath"
)

// Write writes selected data to a file or returns an error if this fails
func Write(file string, data []byte) error {
	basePath := filepath.Dir(file)
	if !Exists(basePath) {
		if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
			return err
		}
	}
	return os.WriteFile(file, data, os.ModePerm)
}

// Exists returns whether or not a file or path exists
func Exists(name string) bool {
	_, err := os.Stat(name)
	return !os.IsNotExist(err)
}
