package serializer

import (
	"fmt"
	"os"
	"path/filepath"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
	"mercator-hq/configurator/pkg/vehicle/validator"
)

// DefaultFileMode is used when the destination does not exist yet.
const DefaultFileMode os.FileMode = 0o644

// WriteTree writes t to path and returns the bytes written. Incomplete
// trees are rejected before the destination is touched.
func WriteTree(path string, t *tree.ConfigTree) ([]byte, error) {
	if err := validator.ValidateTree(t, path); err != nil {
		return nil, err
	}
	data := encodeTree(t)
	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}
	return data, nil
}

// WriteSolutions writes doc to path.
func WriteSolutions(path string, doc *solution.Document) error {
	return writeFileAtomic(path, EncodeSolutions(doc))
}

// WriteSolutionAt writes the solution at index as a single-solution
// document bound to the same tree. An index outside the collection fails
// with an invalid selection error and writes nothing.
func WriteSolutionAt(path string, doc *solution.Document, index int) error {
	s, err := doc.Solutions.At(index)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, encodeSolutions(doc.TreeRef, []*solution.Solution{s}))
}

// writeFileAtomic writes data to a temporary file next to path, syncs it
// and renames it over path. On failure the destination is left as it was.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	perm := DefaultFileMode
	if info, statErr := os.Stat(path); statErr == nil {
		if info.IsDir() {
			return vehErrors.NewIOError(path, "destination is a directory", nil)
		}
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return vehErrors.NewIOError(path, "cannot create temporary file", err)
	}
	tmpPath := tmp.Name()

	// Clean up temp file on any error
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return vehErrors.NewIOError(path, "cannot write file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return vehErrors.NewIOError(path, "cannot sync file", err)
	}
	if err := tmp.Close(); err != nil {
		return vehErrors.NewIOError(path, "cannot close file", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return vehErrors.NewIOError(path, fmt.Sprintf("cannot set mode %v", perm), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return vehErrors.NewIOError(path, "cannot replace file", err)
	}
	return nil
}
