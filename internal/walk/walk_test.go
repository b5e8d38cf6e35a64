package walk

import (
	"context"
	"errors"
	"testing"

	"lazyres/internal/decl"
)

func tree() *decl.File {
	f := &decl.File{
		Header: decl.Header{Name: "t"},
		Decls: []decl.Decl{
			&decl.Class{Header: decl.Header{Name: "A"}, Members: []decl.Decl{
				&decl.Function{Header: decl.Header{Name: "a1"}},
				&decl.Class{Header: decl.Header{Name: "AA"}, Members: []decl.Decl{
					&decl.Property{Header: decl.Header{Name: "aa1"}},
				}},
			}},
			&decl.Function{Header: decl.Header{Name: "b"}},
		},
	}
	decl.Link(f)
	return f
}

func TestWholeFileOrder(t *testing.T) {
	var enter, leave []string
	err := Run(context.Background(), tree(), WholeFile{}, Visitor{
		Enter: func(_ context.Context, d decl.Decl) error {
			enter = append(enter, d.Head().Name)
			return nil
		},
		Leave: func(_ context.Context, d decl.Decl) error {
			leave = append(leave, d.Head().Name)
			return nil
		},
		SkipRoot: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantEnter := []string{"A", "a1", "AA", "aa1", "b"}
	if len(enter) != len(wantEnter) {
		t.Fatalf("enter = %v, want %v", enter, wantEnter)
	}
	for i := range wantEnter {
		if enter[i] != wantEnter[i] {
			t.Fatalf("enter = %v, want %v", enter, wantEnter)
		}
	}
	if len(leave) != 2 || leave[0] != "AA" || leave[1] != "A" {
		t.Fatalf("leave = %v, want [AA A]", leave)
	}
}

type onlyFirst struct{}

func (onlyFirst) Children(_ decl.Decl, children []decl.Decl, descend func(decl.Decl) error) error {
	if len(children) == 0 {
		return nil
	}
	return descend(children[0])
}

func TestPolicyRestrictsWalk(t *testing.T) {
	var seen []string
	_ = Run(context.Background(), tree(), onlyFirst{}, Visitor{
		Enter: func(_ context.Context, d decl.Decl) error {
			seen = append(seen, d.Head().Name)
			return nil
		},
	})
	want := []string{"t", "A", "a1"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
}

func TestErrorStopsWalk(t *testing.T) {
	boom := errors.New("boom")
	n := 0
	err := Run(context.Background(), tree(), nil, Visitor{
		Enter: func(_ context.Context, d decl.Decl) error {
			n++
			if d.Head().Name == "a1" {
				return boom
			}
			return nil
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if n != 3 {
		t.Fatalf("visited %d declarations before stopping, want 3", n)
	}
}
