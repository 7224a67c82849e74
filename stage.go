package reslib

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"
	"strings"
)

// Stage holds resources waiting to be written to an archive.
//
// Each resource is an io.ReadSeeker owned by the Stage until it is taken or
// removed. Every read rewinds the source to its start, so a resource can be
// read any number of times, and Flush leaves the Stage untouched.
//
// A Stage is not safe for concurrent use.
type Stage struct {
	resources map[string]io.ReadSeeker
}

// NewStage returns an empty Stage.
func NewStage() *Stage {
	return &Stage{resources: make(map[string]io.ReadSeeker)}
}

// Stage adds r under path, replacing any resource already staged there.
func (s *Stage) Stage(path string, r io.ReadSeeker) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if r == nil {
		return &fs.PathError{Op: "stage", Path: path, Err: fs.ErrInvalid}
	}
	s.resources[path] = r
	return nil
}

// StageBytes stages data under path. data is not copied and must not be
// modified afterwards.
func (s *Stage) StageBytes(path string, data []byte) error {
	return s.Stage(path, bytes.NewReader(data))
}

// Read returns the full contents of the resource at path.
func (s *Stage) Read(path string) ([]byte, error) {
	r, err := s.lookup("read", path)
	if err != nil {
		return nil, err
	}
	return readResource(path, r)
}

// Take returns the contents of the resource at path and removes it from the
// Stage. The resource stays staged if reading it fails.
func (s *Stage) Take(path string) ([]byte, error) {
	r, err := s.lookup("take", path)
	if err != nil {
		return nil, err
	}
	data, err := readResource(path, r)
	if err != nil {
		return nil, err
	}
	delete(s.resources, path)
	return data, nil
}

// Remove unstages path and hands its source back to the caller unread.
func (s *Stage) Remove(path string) (io.ReadSeeker, error) {
	r, err := s.lookup("remove", path)
	if err != nil {
		return nil, err
	}
	delete(s.resources, path)
	return r, nil
}

// Has reports whether path is staged.
func (s *Stage) Has(path string) bool {
	_, ok := s.resources[path]
	return ok
}

// Paths returns the staged paths in ascending order.
func (s *Stage) Paths() []string {
	return slices.Sorted(maps.Keys(s.resources))
}

// Len returns the number of staged resources.
func (s *Stage) Len() int {
	return len(s.resources)
}

// String lists the staged paths, using each source's own String method when
// it has one.
func (s *Stage) String() string {
	var b strings.Builder
	b.WriteString("Stage{")
	for i, p := range s.Paths() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: ", p)
		switch r := s.resources[p].(type) {
		case fmt.Stringer:
			b.WriteString(r.String())
		default:
			fmt.Fprintf(&b, "%T", r)
		}
	}
	b.WriteString("}")
	return b.String()
}

func (s *Stage) lookup(op, path string) (io.ReadSeeker, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	r, ok := s.resources[path]
	if !ok {
		return nil, &fs.PathError{Op: op, Path: path, Err: ErrNotFound}
	}
	return r, nil
}

// readResource rewinds r and reads it to EOF.
func readResource(path string, r io.ReadSeeker) ([]byte, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
