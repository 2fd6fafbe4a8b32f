package sys

import (
	"io/fs"
	"path"
	"strings"
)

// WriteFileAtomic writes data next to name and renames it into place, so
// readers never observe a partially written file.
func WriteFileAtomic(fsys FS, name string, data []byte, perm fs.FileMode) error {
	dir := path.Dir(strings.ReplaceAll(name, `\`, "/"))
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := name + ".tmp"
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		return err
	}

	if err := fsys.Rename(tmp, name); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}

	return nil
}
