package manifest

import (
	"bytes"
	"os"
	"path/filepath"

	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
)

// Edit is a prepared, not yet written, rewrite of one manifest file.
type Edit struct {
	Path    string
	Data    []byte
	Updated []string // Names whose version changed
	Changed bool     // Data differs from the file contents

	mode os.FileMode
}

// Prepare reads path and computes its rewrite without touching the file.
func Prepare(path, section string, resolved map[string]string) (*Edit, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeReadConfig, err, "error reading manifest %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeReadConfig, err, "error reading manifest %s", path)
	}

	out, updated, err := Update(data, format, section, resolved)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidManifest, err, "manifest %s", path)
	}
	return &Edit{
		Path:    path,
		Data:    out,
		Updated: updated,
		Changed: !bytes.Equal(out, data),
		mode:    info.Mode().Perm(),
	}, nil
}

// NewEdit prepares an unconditional replacement of path with data. An
// existing file keeps its permissions.
func NewEdit(path string, data []byte) *Edit {
	e := &Edit{Path: path, Data: data, Changed: true}
	if info, err := os.Stat(path); err == nil {
		e.mode = info.Mode().Perm()
	}
	return e
}

// Write stores the prepared data. Unchanged files are not rewritten.
func (e *Edit) Write() error {
	_, err := WriteAll([]*Edit{e})
	return err
}

// WriteAll stores every changed edit and returns the written paths in order.
//
// Each file is first written to a temporary sibling. Only when all of them
// are staged are they renamed into place, so a failed write leaves every
// target untouched.
func WriteAll(edits []*Edit) ([]string, error) {
	var staged []*Edit
	var tmps []string
	discard := func(from int) {
		for _, tmp := range tmps[from:] {
			os.Remove(tmp)
		}
	}

	for _, e := range edits {
		if !e.Changed {
			continue
		}
		tmp, err := e.stage()
		if err != nil {
			discard(0)
			return nil, err
		}
		staged = append(staged, e)
		tmps = append(tmps, tmp)
	}

	written := make([]string, 0, len(staged))
	for i, e := range staged {
		if err := os.Rename(tmps[i], e.Path); err != nil {
			discard(i)
			return written, apperr.Wrap(apperr.ErrCodeWriteFailed, err, "error writing %s", e.Path)
		}
		written = append(written, e.Path)
	}
	return written, nil
}

// stage writes the data next to the target and returns the temporary path.
func (e *Edit) stage() (string, error) {
	mode := e.mode
	if mode == 0 {
		mode = 0o644
	}
	f, err := os.CreateTemp(filepath.Dir(e.Path), "."+filepath.Base(e.Path)+".*.tmp")
	if err != nil {
		return "", apperr.Wrap(apperr.ErrCodeWriteFailed, err, "error writing %s", e.Path)
	}
	tmp := f.Name()
	_, err = f.Write(e.Data)
	if err == nil {
		err = f.Chmod(mode)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", apperr.Wrap(apperr.ErrCodeWriteFailed, err, "error writing %s", e.Path)
	}
	return tmp, nil
}

// UpdateFile rewrites the version attributes in the manifest at path and
// returns the names whose version changed.
func UpdateFile(path, section string, resolved map[string]string) ([]string, error) {
	e, err := Prepare(path, section, resolved)
	if err != nil {
		return nil, err
	}
	if err := e.Write(); err != nil {
		return nil, err
	}
	return e.Updated, nil
}
