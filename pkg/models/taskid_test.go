package models

import (
	"errors"
	"slices"
	"testing"
)

func TestParseTaskID(t *testing.T) {
	tests := []struct {
		in   string
		want []uint32
	}{
		{"", nil},
		{"1.1", []uint32{1, 1}},
		{"4.523.123", []uint32{4, 523, 123}},
		{"2", []uint32{2}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, err := ParseTaskID(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := id.Segments(); !slices.Equal(got, tt.want) {
				t.Errorf("Segments() = %v, want %v", got, tt.want)
			}
			if id.String() != tt.in {
				t.Errorf("String() = %q, want %q", id.String(), tt.in)
			}
		})
	}
}

func TestParseTaskID_Malformed(t *testing.T) {
	for _, in := range []string{".1.1", "1.1.", "1..2", "a", "1.b", "0", "1.0", "-1", "."} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTaskID(in)
			if !errors.Is(err, ErrBadTaskIDString) {
				t.Fatalf("ParseTaskID(%q) error = %v, want ErrBadTaskIDString", in, err)
			}
			var te *TaskError
			if !errors.As(err, &te) || te.Text != in {
				t.Errorf("expected TaskError carrying text %q, got %v", in, err)
			}
		})
	}
}

func TestParseTaskID_RootEqualsZeroValue(t *testing.T) {
	id, err := ParseTaskID("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != RootTaskID() || !id.IsRoot() {
		t.Errorf("expected root identifier, got %q", id)
	}
}

func TestTaskID_Parent(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1.1", "1"},
		{"1.1.234.12", "1.1.234"},
		{"2.534.234.12.243.123", "2.534.234.12.243"},
		{"7", ""},
	}
	for _, tt := range tests {
		got, err := MustTaskID(tt.in).Parent()
		if err != nil {
			t.Fatalf("Parent(%q): unexpected error: %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Errorf("Parent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := RootTaskID().Parent(); !errors.Is(err, ErrNoParent) {
		t.Errorf("root Parent() error = %v, want ErrNoParent", err)
	}
}

func TestTaskID_ChildIndex(t *testing.T) {
	idx, err := MustTaskID("3.14").ChildIndex()
	if err != nil || idx != 14 {
		t.Errorf("ChildIndex() = %d, %v; want 14, nil", idx, err)
	}
	if _, err := RootTaskID().ChildIndex(); !errors.Is(err, ErrNoChildIndex) {
		t.Errorf("root ChildIndex() error = %v, want ErrNoChildIndex", err)
	}
}

func TestTaskID_NewChild(t *testing.T) {
	child, err := MustTaskID("2.1").NewChild(3)
	if err != nil || child.String() != "2.1.3" {
		t.Errorf("NewChild(3) = %q, %v; want 2.1.3", child, err)
	}
	first, err := RootTaskID().NewChild(1)
	if err != nil || first.String() != "1" {
		t.Errorf("root NewChild(1) = %q, %v; want 1", first, err)
	}
	if _, err := RootTaskID().NewChild(0); !errors.Is(err, ErrBadTaskIDNum) {
		t.Errorf("NewChild(0) error = %v, want ErrBadTaskIDNum", err)
	}
}

func TestTaskID_Siblings(t *testing.T) {
	next, err := MustTaskID("2.1").NextSibling()
	if err != nil || next.String() != "2.2" {
		t.Errorf("NextSibling = %q, %v; want 2.2", next, err)
	}
	prev, err := MustTaskID("2.3").PrevSibling()
	if err != nil || prev.String() != "2.2" {
		t.Errorf("PrevSibling = %q, %v; want 2.2", prev, err)
	}
	if _, err := MustTaskID("2.1").PrevSibling(); !errors.Is(err, ErrBadTaskIDNum) {
		t.Errorf("PrevSibling of first child error = %v, want ErrBadTaskIDNum", err)
	}
	if _, err := RootTaskID().NextSibling(); !errors.Is(err, ErrNoParent) {
		t.Errorf("root NextSibling error = %v, want ErrNoParent", err)
	}
}

func TestTaskID_ChildrenAndPath(t *testing.T) {
	children := MustTaskID("4").Children(3)
	var texts []string
	for _, c := range children {
		texts = append(texts, c.String())
	}
	if !slices.Equal(texts, []string{"4.1", "4.2", "4.3"}) {
		t.Errorf("Children(3) = %v", texts)
	}
	if len(RootTaskID().Children(0)) != 0 {
		t.Error("Children(0) should be empty")
	}

	texts = nil
	for _, p := range MustTaskID("1.2.3").Path() {
		texts = append(texts, p.String())
	}
	if !slices.Equal(texts, []string{"", "1", "1.2", "1.2.3"}) {
		t.Errorf("Path() = %q", texts)
	}
	if path := RootTaskID().Path(); len(path) != 1 || !path[0].IsRoot() {
		t.Errorf("root Path() = %v", path)
	}
}

func TestTaskID_Shifted(t *testing.T) {
	got := MustTaskID("2.3.4").Shifted(1)
	if got.String() != "2.2.4" {
		t.Errorf("Shifted(1) = %q, want 2.2.4", got)
	}
}

func TestTaskID_Compare(t *testing.T) {
	ids := []TaskID{MustTaskID("10"), MustTaskID("2.1"), MustTaskID(""), MustTaskID("2"), MustTaskID("1.9")}
	slices.SortFunc(ids, TaskID.Compare)
	var texts []string
	for _, id := range ids {
		texts = append(texts, id.String())
	}
	if !slices.Equal(texts, []string{"", "1.9", "2", "2.1", "10"}) {
		t.Errorf("sorted = %q", texts)
	}
}

func TestTaskID_TextMarshaling(t *testing.T) {
	var id TaskID
	if err := id.UnmarshalText([]byte("3.2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _ := id.MarshalText()
	if string(out) != "3.2" {
		t.Errorf("MarshalText = %q", out)
	}
	if err := id.UnmarshalText([]byte("3.")); !errors.Is(err, ErrBadTaskIDString) {
		t.Errorf("UnmarshalText error = %v", err)
	}
}
