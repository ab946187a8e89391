package models

import (
	"strconv"
	"strings"
)

// taskIDSeparator joins the per-depth child indices of a TaskID.
const taskIDSeparator = "."

// TaskID is a hierarchical path of 1-based sibling indices identifying a node
// in the work breakdown structure. The zero value is the root identifier.
//
// TaskID is an immutable value type: it compares with == and can be used as a
// map key. Its canonical text form ("2.1.3") is held internally so equality is
// by sequence value.
type TaskID struct {
	path string
}

// RootTaskID returns the identifier of the root task (the empty sequence).
func RootTaskID() TaskID {
	return TaskID{}
}

// NewTaskID builds an identifier from explicit segments. A zero segment is
// rejected with ErrBadTaskIDNum.
func NewTaskID(segments ...uint32) (TaskID, error) {
	id := RootTaskID()
	for _, s := range segments {
		child, err := id.NewChild(s)
		if err != nil {
			return TaskID{}, err
		}
		id = child
	}
	return id, nil
}

// MustTaskID is like ParseTaskID but panics on malformed text. It is intended
// for literals in tests and fixtures.
func MustTaskID(text string) TaskID {
	id, err := ParseTaskID(text)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseTaskID parses dot-separated positive decimal indices. Empty text is the
// root identifier. Empty or non-numeric segments, including leading or
// trailing separators, fail with ErrBadTaskIDString.
func ParseTaskID(text string) (TaskID, error) {
	if text == "" {
		return RootTaskID(), nil
	}
	parts := strings.Split(text, taskIDSeparator)
	canonical := make([]string, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || n == 0 {
			return TaskID{}, &TaskError{Err: ErrBadTaskIDString, Text: text}
		}
		canonical[i] = strconv.FormatUint(n, 10)
	}
	return TaskID{path: strings.Join(canonical, taskIDSeparator)}, nil
}

// String renders the identifier as dot-joined decimal segments. The root
// renders as empty text.
func (id TaskID) String() string {
	return id.path
}

// IsRoot reports whether id is the root identifier.
func (id TaskID) IsRoot() bool {
	return id.path == ""
}

// Depth returns the number of segments; the root has depth 0.
func (id TaskID) Depth() int {
	if id.IsRoot() {
		return 0
	}
	return strings.Count(id.path, taskIDSeparator) + 1
}

// Segments returns a fresh copy of the identifier's indices.
func (id TaskID) Segments() []uint32 {
	if id.IsRoot() {
		return nil
	}
	parts := strings.Split(id.path, taskIDSeparator)
	segs := make([]uint32, len(parts))
	for i, p := range parts {
		// The path is canonical, so the parse cannot fail.
		n, _ := strconv.ParseUint(p, 10, 32)
		segs[i] = uint32(n)
	}
	return segs
}

// Parent returns all but the last segment.
func (id TaskID) Parent() (TaskID, error) {
	if id.IsRoot() {
		return TaskID{}, &TaskError{Err: ErrNoParent, ID: id}
	}
	i := strings.LastIndex(id.path, taskIDSeparator)
	if i < 0 {
		return RootTaskID(), nil
	}
	return TaskID{path: id.path[:i]}, nil
}

// ChildIndex returns the last segment.
func (id TaskID) ChildIndex() (uint32, error) {
	if id.IsRoot() {
		return 0, &TaskError{Err: ErrNoChildIndex, ID: id}
	}
	last := id.path[strings.LastIndex(id.path, taskIDSeparator)+1:]
	n, _ := strconv.ParseUint(last, 10, 32)
	return uint32(n), nil
}

// NewChild appends index n.
func (id TaskID) NewChild(n uint32) (TaskID, error) {
	if n == 0 {
		return TaskID{}, &TaskError{Err: ErrBadTaskIDNum, ID: id}
	}
	seg := strconv.FormatUint(uint64(n), 10)
	if id.IsRoot() {
		return TaskID{path: seg}, nil
	}
	return TaskID{path: id.path + taskIDSeparator + seg}, nil
}

// NextSibling returns the identifier one index after id under the same
// parent. It does not check that the sibling exists.
func (id TaskID) NextSibling() (TaskID, error) {
	return id.siblingAt(1)
}

// PrevSibling returns the identifier one index before id under the same
// parent. The first child has no previous sibling and fails with
// ErrBadTaskIDNum.
func (id TaskID) PrevSibling() (TaskID, error) {
	return id.siblingAt(-1)
}

func (id TaskID) siblingAt(offset int64) (TaskID, error) {
	parent, err := id.Parent()
	if err != nil {
		return TaskID{}, err
	}
	idx, err := id.ChildIndex()
	if err != nil {
		return TaskID{}, err
	}
	n := int64(idx) + offset
	if n <= 0 || n > int64(^uint32(0)) {
		return TaskID{}, &TaskError{Err: ErrBadTaskIDNum, ID: id}
	}
	return parent.NewChild(uint32(n))
}

// Children returns the identifiers of the first numChild direct children.
func (id TaskID) Children(numChild uint32) []TaskID {
	children := make([]TaskID, 0, numChild)
	for i := uint32(1); i <= numChild; i++ {
		child, _ := id.NewChild(i)
		children = append(children, child)
	}
	return children
}

// Path returns the identifiers from the root through every ancestor prefix up
// to and including id, in root-to-self order.
func (id TaskID) Path() []TaskID {
	path := make([]TaskID, 0, id.Depth()+1)
	path = append(path, RootTaskID())
	if id.IsRoot() {
		return path
	}
	for i := 0; i < len(id.path); i++ {
		if id.path[i] == '.' {
			path = append(path, TaskID{path: id.path[:i]})
		}
	}
	return append(path, id)
}

// withSegment returns a copy of id whose segment at depth (0-based) is
// replaced by n.
func (id TaskID) withSegment(depth int, n uint32) TaskID {
	segs := id.Segments()
	segs[depth] = n
	out := RootTaskID()
	for _, s := range segs {
		out, _ = out.NewChild(s)
	}
	return out
}

// Shifted returns id with the index at depth decremented by one. It is the
// relabeling step used when a sibling at that depth is removed; the caller
// guarantees the index at depth is greater than one.
func (id TaskID) Shifted(depth int) TaskID {
	segs := id.Segments()
	return id.withSegment(depth, segs[depth]-1)
}

// MarshalText implements encoding.TextMarshaler.
func (id TaskID) MarshalText() ([]byte, error) {
	return []byte(id.path), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *TaskID) UnmarshalText(text []byte) error {
	parsed, err := ParseTaskID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Compare orders identifiers depth-first: by segment value, with a prefix
// sorting before its extensions. It returns -1, 0 or +1.
func (id TaskID) Compare(other TaskID) int {
	a, b := id.Segments(), other.Segments()
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
