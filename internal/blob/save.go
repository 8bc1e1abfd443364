package blob

import (
	"fmt"
	"os"
	"path/filepath"
)

// Saver stores a finished download under a file name and returns where it
// ended up.
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// Dir is a Saver that writes into a directory. Files are written to a temp
// file next to the destination and renamed into place, so a failed save never
// leaves a partial file under the final name, and the temp file is removed on
// every path.
type Dir string

func (d Dir) Save(name string, data []byte) (string, error) {
	dir := string(d)
	if dir == "" {
		dir = "."
	}
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vadm-download-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	dest := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return dest, nil
}
